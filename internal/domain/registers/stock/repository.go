package stock

import (
	"context"

	"repairdesk/internal/domain/catalogs/warehouse"
	"repairdesk/internal/domain/documents/repair"
)

// Repository persists repair parts. Getters return live lines only.
type Repository interface {
	Create(ctx context.Context, p *RepairPart) error
	GetByID(ctx context.Context, id int64) (*RepairPart, error)

	// FindLive returns the live line for the repair and item, or NotFound.
	FindLive(ctx context.Context, repairID, warehouseItemID int64) (*RepairPart, error)

	// ListByRepair returns live lines ordered by id.
	ListByRepair(ctx context.Context, repairID int64) ([]RepairPart, error)

	// Update writes quantity, price, notes and the soft-delete flag.
	Update(ctx context.Context, p *RepairPart) error

	// SetConsumed moves consumed_quantity from expected to consumed. It reports
	// false without writing when the stored value is no longer expected.
	SetConsumed(ctx context.Context, id int64, expected, consumed int) (bool, error)
}

// RepairLookup resolves live repairs by internal id.
type RepairLookup interface {
	GetByInternalID(ctx context.Context, id int64) (*repair.RepairOrder, error)
}

// Inventory reads and decrements warehouse items.
type Inventory interface {
	// GetByID returns the item even when soft-deleted.
	GetByID(ctx context.Context, id int64) (*warehouse.Item, error)
	Decrement(ctx context.Context, id int64, qty int) (*warehouse.Item, error)
}
