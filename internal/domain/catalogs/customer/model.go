// Package customer provides the customer directory the repair desk resolves
// or creates customers through.
package customer

import (
	"repairdesk/internal/core/entity"
)

// Customer is a person or company bringing devices in for repair.
type Customer struct {
	ID       int64  `db:"id" json:"id"`
	TenantID int64  `db:"tenant_id" json:"tenantId"`
	Name     string `db:"name" json:"name"`
	Phone    string `db:"phone" json:"phone,omitempty"`
	Email    string `db:"email" json:"email,omitempty"`

	entity.Audit
	entity.SoftDelete
}

// NewCustomer carries the fields needed to register a customer at intake.
type NewCustomer struct {
	Name  string `validate:"required,max=200"`
	Phone string `validate:"omitempty,max=40"`
	Email string `validate:"omitempty,email"`
}
