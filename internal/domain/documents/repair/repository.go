package repair

import (
	"context"

	"repairdesk/internal/core/id"
)

// Repository persists repair orders. Getters return only live orders and
// NotFound otherwise.
type Repository interface {
	// Create inserts the order and assigns its internal ID.
	Create(ctx context.Context, o *RepairOrder) error

	GetByRepairID(ctx context.Context, repairID id.ID) (*RepairOrder, error)
	GetByInternalID(ctx context.Context, id int64) (*RepairOrder, error)
	GetByCode(ctx context.Context, tenantID int64, code string) (*RepairOrder, error)

	// Update writes every mutable column, including the soft-delete flag.
	Update(ctx context.Context, o *RepairOrder) error
}
