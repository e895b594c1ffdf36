package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tillboard/ordersync/internal/core/domain"
	"github.com/tillboard/ordersync/internal/port"
)

// CheckoutService closes out an order: it reads the current shared snapshot,
// computes totals and archives the result. It works off the store's value,
// not any surface's local model, so a surface with unpushed edits finalizes
// what the other surfaces can see.
type CheckoutService struct {
	store   port.OrderStore
	archive port.ArchiveRepository
}

func NewCheckoutService(store port.OrderStore, archive port.ArchiveRepository) *CheckoutService {
	return &CheckoutService{store: store, archive: archive}
}

func (s *CheckoutService) Finalize(ctx context.Context, orderID string) (domain.FinalizedOrder, error) {
	snap, err := s.store.Get(ctx, orderID)
	if err != nil {
		return domain.FinalizedOrder{}, fmt.Errorf("read order: %w", err)
	}
	if snap.Order == nil {
		return domain.FinalizedOrder{}, port.ErrOrderNotFound
	}

	o := snap.Order.Clone()
	rec := domain.FinalizedOrder{
		OrderID:             orderID,
		Revision:            snap.Revision,
		Items:               o.Items,
		Subtotal:            o.Subtotal(),
		ServiceCharge:       o.ServiceCharge,
		Total:               o.Total(),
		CustomerName:        o.CustomerName,
		CustomerPhoneNumber: o.CustomerPhoneNumber,
		TableNumber:         o.TableNumber,
		Notes:               o.Notes,
		FinalizedAt:         time.Now().UTC(),
	}

	if err := s.archive.SaveFinalizedOrder(ctx, rec); err != nil {
		return domain.FinalizedOrder{}, fmt.Errorf("archive order: %w", err)
	}
	return rec, nil
}
