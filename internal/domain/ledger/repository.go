package ledger

import (
	"context"

	"repairdesk/internal/core/id"
	"repairdesk/internal/core/types"
	"repairdesk/internal/domain/documents/repair"
)

// Repository persists ledgers and payments. Getters return live rows only.
type Repository interface {
	// CreateOrder returns a Duplicate error when the code is taken.
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id int64) (*Order, error)
	// GetOrderForUpdate locks the order row until the transaction ends.
	GetOrderForUpdate(ctx context.Context, id int64) (*Order, error)
	// UpdateOrderBalance writes paid, remaining and status.
	UpdateOrderBalance(ctx context.Context, o *Order) error

	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListPayments(ctx context.Context, orderID int64) ([]Payment, error)
	SoftDeletePayment(ctx context.Context, id int64, deletedBy string) error

	CreateRepairPayment(ctx context.Context, p *RepairPayment) error
	GetRepairPayment(ctx context.Context, id int64) (*RepairPayment, error)
	GetRepairPaymentByRepair(ctx context.Context, repairID int64) (*RepairPayment, error)
	SoftDeleteRepairPayment(ctx context.Context, id int64, deletedBy string) error
}

// RepairLookup resolves live repairs by external id.
type RepairLookup interface {
	GetByID(ctx context.Context, repairID id.ID) (*repair.RepairOrder, error)
}

// PartsTotaler sums the live part lines of a repair.
type PartsTotaler interface {
	PartsTotal(ctx context.Context, repairID int64) (types.Money, error)
}
