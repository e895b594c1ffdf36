package port

import (
	"context"

	"github.com/tillboard/ordersync/internal/core/domain"
)

type ArchiveRepository interface {
	// SaveFinalizedOrder persists the finalized order record exactly once per
	// order ID.
	SaveFinalizedOrder(ctx context.Context, rec domain.FinalizedOrder) error
}
