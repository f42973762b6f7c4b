// Package stock attaches warehouse parts to repairs and consumes them from
// inventory.
package stock

import (
	"repairdesk/internal/core/entity"
	"repairdesk/internal/core/types"
)

// EntityName is used in errors and audit records.
const EntityName = "repair part"

// RepairPart is a reservation of a warehouse item for a repair. Quantity is
// reserved at add time; ConsumedQuantity tracks how much of it has already
// been taken out of stock.
type RepairPart struct {
	ID               int64       `db:"id" json:"id"`
	RepairID         int64       `db:"repair_id" json:"repairId"`
	WarehouseItemID  int64       `db:"warehouse_item_id" json:"warehouseItemId"`
	Quantity         int         `db:"quantity" json:"quantity"`
	ConsumedQuantity int         `db:"consumed_quantity" json:"consumedQuantity"`
	UnitPrice        types.Money `db:"unit_price" json:"unitPrice"`
	LineTotal        types.Money `db:"line_total" json:"lineTotal"`
	Notes            string      `db:"notes" json:"notes,omitempty"`

	entity.Audit
	entity.SoftDelete
}

// Pending returns the quantity not yet taken out of stock.
func (p *RepairPart) Pending() int {
	if p.Quantity < p.ConsumedQuantity {
		return 0
	}
	return p.Quantity - p.ConsumedQuantity
}

// Recalculate refreshes LineTotal at the snapshotted unit price.
func (p *RepairPart) Recalculate() {
	p.LineTotal = types.LineTotal(p.Quantity, p.UnitPrice)
}

// AddPartInput reserves Quantity units of a warehouse item for a repair.
type AddPartInput struct {
	RepairID        int64 `validate:"gt=0"`
	WarehouseItemID int64 `validate:"gt=0"`
	Quantity        int   `validate:"gt=0"`
	Notes           string
}

// PartRequest is one entry of a batch addition.
type PartRequest struct {
	WarehouseItemID int64
	Quantity        int
	Notes           string
}

// PartOutcome is the result of one batch entry. Exactly one of Part and Err
// is set.
type PartOutcome struct {
	WarehouseItemID int64
	Part            *RepairPart
	Err             error
}

// BatchResult reports every entry of a batch addition. Success is true only
// when every entry succeeded.
type BatchResult struct {
	Success  bool
	Outcomes []PartOutcome
}

// Failed returns the outcomes that carry an error.
func (r BatchResult) Failed() []PartOutcome {
	var failed []PartOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// UpdatePartInput changes a line. Nil fields are left unchanged.
type UpdatePartInput struct {
	Quantity *int `validate:"omitempty,gt=0"`
	Notes    *string
}

// LineStatus is the consumption outcome of one line.
type LineStatus string

const (
	LineConsumed LineStatus = "consumed"
	LineSkipped  LineStatus = "skipped"
	LineFailed   LineStatus = "failed"
)

// LineOutcome describes what ConsumeStock did with one line.
type LineOutcome struct {
	PartID          int64      `json:"partId"`
	WarehouseItemID int64      `json:"warehouseItemId"`
	Quantity        int        `json:"quantity"`
	Status          LineStatus `json:"status"`
	Error           string     `json:"error,omitempty"`
}

// ConsumeResult is the outcome of ConsumeStock. Callers must inspect Errors
// even when some lines were consumed.
type ConsumeResult struct {
	Success       bool          `json:"success"`
	ConsumedItems int           `json:"consumedItems"`
	Outcomes      []LineOutcome `json:"outcomes"`
	Errors        []string      `json:"errors"`
}

func (r *ConsumeResult) record(o LineOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case LineConsumed:
		r.ConsumedItems++
	case LineFailed:
		r.Errors = append(r.Errors, o.Error)
	}
}
