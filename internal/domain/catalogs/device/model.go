// Package device provides the device directory used during repair intake.
package device

import (
	"repairdesk/internal/core/entity"
)

// Device is a customer-owned phone, tablet or computer.
type Device struct {
	ID           int64  `db:"id" json:"id"`
	TenantID     int64  `db:"tenant_id" json:"tenantId"`
	CustomerID   *int64 `db:"customer_id" json:"customerId,omitempty"`
	Brand        string `db:"brand" json:"brand"`
	Model        string `db:"model" json:"model"`
	SerialNumber string `db:"serial_number" json:"serialNumber,omitempty"`
	IMEI         string `db:"imei" json:"imei,omitempty"`

	entity.Audit
	entity.SoftDelete
}

// NewDevice carries the fields needed to register a device at intake.
type NewDevice struct {
	Brand        string `validate:"required,max=100"`
	Model        string `validate:"required,max=100"`
	SerialNumber string `validate:"omitempty,max=100"`
	IMEI         string `validate:"omitempty,max=20"`
}
