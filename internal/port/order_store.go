package port

import (
	"context"
	"errors"

	"github.com/tillboard/ordersync/internal/core/domain"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderStore interface {
	// Subscribe delivers the current snapshot immediately (nil Order when the
	// key is absent), then one snapshot per subsequent accepted write, in the
	// order the store accepted them. Delivery stops when cancel is called or
	// ctx ends; a fresh Subscribe afterward starts over with the current value.
	Subscribe(ctx context.Context, orderID string) (<-chan domain.Snapshot, func(), error)

	// Write replaces the entire value at orderID and assigns it a new
	// revision. Last-write-wins: no compare-and-swap, no merge.
	Write(ctx context.Context, orderID string, order domain.Order) error

	// Get returns the current snapshot without subscribing. Order is nil when
	// the key is absent.
	Get(ctx context.Context, orderID string) (domain.Snapshot, error)
}
