// Package repair provides the repair order lifecycle: atomic intake, the
// status state machine and structural updates.
package repair

import (
	"strings"
	"time"

	"repairdesk/internal/core/entity"
	"repairdesk/internal/core/id"
	"repairdesk/internal/core/types"
	"repairdesk/internal/domain/catalogs/customer"
	"repairdesk/internal/domain/catalogs/device"
	"repairdesk/internal/domain/diagnostics"
)

// EntityName is used in errors and audit records.
const EntityName = "repair"

// RepairOrder is a device repair tracked from intake to delivery.
type RepairOrder struct {
	ID         int64  `db:"id" json:"-"`
	RepairID   id.ID  `db:"repair_id" json:"repairId"`
	RepairCode string `db:"repair_code" json:"repairCode"`
	TenantID   int64  `db:"tenant_id" json:"tenantId"`
	DeviceID   int64  `db:"device_id" json:"deviceId"`
	CustomerID int64  `db:"customer_id" json:"customerId"`

	FaultDescription string `db:"fault_description" json:"faultDescription"`
	PerformedAction  string `db:"performed_action" json:"performedAction,omitempty"`
	Technician       string `db:"technician" json:"technician,omitempty"`

	StatusCode  Status `db:"status_code" json:"statusCode"`
	StatusLabel string `db:"status_label" json:"statusLabel"`
	Notes       string `db:"notes" json:"notes,omitempty"`

	Priority       Priority     `db:"priority" json:"priority"`
	EstimatedPrice *types.Money `db:"estimated_price" json:"estimatedPrice,omitempty"`
	LaborCost      types.Money  `db:"labor_cost" json:"laborCost"`

	ReceivedAt  time.Time  `db:"received_at" json:"receivedAt"`
	StartedAt   *time.Time `db:"started_at" json:"startedAt,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	DeliveredAt *time.Time `db:"delivered_at" json:"deliveredAt,omitempty"`

	entity.Audit
	entity.SoftDelete
}

// CanModify returns a validation error when the order is in a terminal status.
func (o *RepairOrder) CanModify() error {
	if o.StatusCode.IsTerminal() {
		return terminalError(o)
	}
	return nil
}

// setStatus moves the order to status and stamps the milestone the first time
// it is reached.
func (o *RepairOrder) setStatus(status Status, label string, at time.Time) {
	o.StatusCode = status
	o.StatusLabel = strings.TrimSpace(label)
	if o.StatusLabel == "" {
		o.StatusLabel = status.Label()
	}

	stamp := func(p **time.Time) {
		if *p == nil {
			t := at
			*p = &t
		}
	}
	switch status {
	case StatusStarted:
		stamp(&o.StartedAt)
	case StatusCompleted:
		stamp(&o.CompletedAt)
	case StatusDelivered:
		stamp(&o.DeliveredAt)
	}
}

// auditState returns the fields tracked in the audit log.
func (o *RepairOrder) auditState() map[string]any {
	state := map[string]any{
		"customer_id":       o.CustomerID,
		"device_id":         o.DeviceID,
		"fault_description": o.FaultDescription,
		"performed_action":  o.PerformedAction,
		"technician":        o.Technician,
		"status_code":       string(o.StatusCode),
		"priority":          string(o.Priority),
		"labor_cost":        o.LaborCost.StringFixed(types.MoneyPlaces),
		"notes":             o.Notes,
	}
	if o.EstimatedPrice != nil {
		state["estimated_price"] = o.EstimatedPrice.StringFixed(types.MoneyPlaces)
	}
	return state
}

// AppendNote adds text to the note history as "[YYYY-MM-DD HH:MM] text" on
// its own line. Blank text leaves notes unchanged.
func AppendNote(notes, text string, at time.Time) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return notes
	}
	entry := "[" + at.Format("2006-01-02 15:04") + "] " + text
	if notes == "" {
		return entry
	}
	return notes + "\n" + entry
}

// CreateInput describes a new repair. Exactly one of CustomerID and
// NewCustomer, and one of DeviceID and NewDevice, is expected.
type CreateInput struct {
	// TenantID defaults to the tenant of the request context.
	TenantID int64

	CustomerID  *int64
	NewCustomer *customer.NewCustomer

	DeviceID  *int64
	NewDevice *device.NewDevice

	FaultDescription string `validate:"required,max=2000"`
	Technician       string `validate:"max=200"`
	Priority         string `validate:"omitempty,oneof=low normal high"`
	EstimatedPrice   *types.Money
	LaborCost        *types.Money
	Notes            string

	Diagnostics []diagnostics.Item `validate:"dive"`
}

// StatusInput requests a status transition.
type StatusInput struct {
	Code  string `validate:"required"`
	Label string
	Notes string
}

// UpdateInput is a partial update. Empty strings and nil pointers leave the
// field unchanged; a non-nil Diagnostics replaces the snapshot.
type UpdateInput struct {
	CustomerID       *int64
	DeviceID         *int64
	FaultDescription string `validate:"max=2000"`
	PerformedAction  string
	Technician       string `validate:"max=200"`
	Priority         string `validate:"omitempty,oneof=low normal high"`
	EstimatedPrice   *types.Money
	LaborCost        *types.Money
	Notes            string

	Diagnostics []diagnostics.Item `validate:"omitempty,dive"`
}

// isEmpty reports whether the update carries no change at all.
func (in UpdateInput) isEmpty() bool {
	return in.CustomerID == nil && in.DeviceID == nil &&
		in.FaultDescription == "" && in.PerformedAction == "" && in.Technician == "" &&
		in.Priority == "" && in.EstimatedPrice == nil && in.LaborCost == nil &&
		in.Notes == "" && in.Diagnostics == nil
}
