package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillboard/ordersync/internal/core/domain"
	"github.com/tillboard/ordersync/internal/port"
)

type mockArchive struct {
	mu    sync.Mutex
	saved []domain.FinalizedOrder
	err   error
}

func (m *mockArchive) SaveFinalizedOrder(ctx context.Context, rec domain.FinalizedOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, rec)
	return nil
}

func TestFinalize_ComputesTotalsAndArchives(t *testing.T) {
	store := newMockStore()
	store.inject(domain.Order{
		Items: []domain.OrderItem{
			{ItemID: "a", Name: "Latte", UnitPrice: 4.5, Quantity: 2},
			{ItemID: "b", Name: "Croissant", UnitPrice: 3, Quantity: 1},
		},
		ServiceCharge: 2,
		CustomerName:  "Ana",
		TableNumber:   "7",
	})
	archive := &mockArchive{}
	svc := NewCheckoutService(store, archive)

	rec, err := svc.Finalize(context.Background(), "order-1")
	require.NoError(t, err)

	assert.Equal(t, "order-1", rec.OrderID)
	assert.Equal(t, int64(1), rec.Revision)
	assert.Equal(t, 12.0, rec.Subtotal)
	assert.Equal(t, 2.0, rec.ServiceCharge)
	assert.Equal(t, 14.0, rec.Total)
	assert.Equal(t, "Ana", rec.CustomerName)
	assert.False(t, rec.FinalizedAt.IsZero())

	require.Len(t, archive.saved, 1)
	assert.Equal(t, rec.OrderID, archive.saved[0].OrderID)
	assert.Len(t, archive.saved[0].Items, 2)
}

func TestFinalize_AbsentOrder(t *testing.T) {
	svc := NewCheckoutService(newMockStore(), &mockArchive{})

	_, err := svc.Finalize(context.Background(), "missing")
	assert.ErrorIs(t, err, port.ErrOrderNotFound)
}

func TestFinalize_ArchiveErrorIsWrapped(t *testing.T) {
	store := newMockStore()
	store.inject(domain.Order{Items: []domain.OrderItem{{ItemID: "a", UnitPrice: 1, Quantity: 1}}})
	boom := errors.New("disk full")
	svc := NewCheckoutService(store, &mockArchive{err: boom})

	_, err := svc.Finalize(context.Background(), "order-1")
	assert.ErrorIs(t, err, boom)
}
