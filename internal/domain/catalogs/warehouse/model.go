// Package warehouse provides warehouse items (spare parts on hand).
package warehouse

import (
	"context"

	"repairdesk/internal/core/apperror"
	"repairdesk/internal/core/entity"
	"repairdesk/internal/core/types"
)

// Item is a stocked spare part. Quantity is never negative.
type Item struct {
	ID         int64       `db:"id" json:"id"`
	TenantID   int64       `db:"tenant_id" json:"tenantId"`
	Code       string      `db:"code" json:"code"`
	Name       string      `db:"name" json:"name"`
	Quantity   int         `db:"quantity" json:"quantity"`
	UnitPrice  types.Money `db:"unit_price" json:"unitPrice"`
	TotalValue types.Money `db:"total_value" json:"totalValue"`

	entity.Audit
	entity.SoftDelete
}

// Recalculate refreshes TotalValue from Quantity and UnitPrice.
func (i *Item) Recalculate() {
	i.TotalValue = types.LineTotal(i.Quantity, i.UnitPrice)
}

// Available reports whether qty units are on hand.
func (i *Item) Available(qty int) bool {
	return !i.IsDeleted && i.Quantity >= qty
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if i.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").WithDetail("field", "quantity")
	}
	if i.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").WithDetail("field", "unitPrice")
	}
	return nil
}

var _ entity.Validatable = (*Item)(nil)
