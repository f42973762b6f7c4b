package warehouse

import (
	"context"
)

// Repository defines the interface for warehouse item persistence.
type Repository interface {
	Create(ctx context.Context, item *Item) error

	// GetByID returns the item even when soft-deleted; callers check IsDeleted.
	GetByID(ctx context.Context, id int64) (*Item, error)

	// Save persists quantity, price and total value.
	Save(ctx context.Context, item *Item) error

	// Decrement atomically lowers quantity by qty if at least qty is on hand
	// and recomputes the total value. Returns NotFound for missing or deleted
	// items and INSUFFICIENT_STOCK when the row holds fewer than qty units.
	Decrement(ctx context.Context, id int64, qty int) (*Item, error)
}
