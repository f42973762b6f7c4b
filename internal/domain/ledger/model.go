// Package ledger tracks payments against purchases, sales and repairs.
package ledger

import (
	"time"

	"repairdesk/internal/core/entity"
	corenumerator "repairdesk/internal/core/numerator"
	"repairdesk/internal/core/types"
)

// Kind distinguishes purchase and sale ledgers.
type Kind string

const (
	KindPurchase Kind = "purchase"
	KindSale     Kind = "sale"
)

func (k Kind) codeKind() corenumerator.Kind {
	if k == KindPurchase {
		return corenumerator.KindPurchase
	}
	return corenumerator.KindSale
}

// Order is a purchase or sale settled in one or more installments.
// PaidAmount + RemainingAmount equals TotalAmount at all times.
type Order struct {
	ID           int64  `db:"id" json:"id"`
	Kind         Kind   `db:"kind" json:"kind"`
	Code         string `db:"code" json:"code"`
	TenantID     int64  `db:"tenant_id" json:"tenantId"`
	Counterparty string `db:"counterparty" json:"counterparty"`
	Description  string `db:"description" json:"description,omitempty"`

	BaseAmount      types.Money   `db:"base_amount" json:"baseAmount"`
	VATRate         types.Money   `db:"vat_rate" json:"vatRate"`
	VATAmount       types.Money   `db:"vat_amount" json:"vatAmount"`
	TotalAmount     types.Money   `db:"total_amount" json:"totalAmount"`
	PaidAmount      types.Money   `db:"paid_amount" json:"paidAmount"`
	RemainingAmount types.Money   `db:"remaining_amount" json:"remainingAmount"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"paymentStatus"`

	entity.Audit
	entity.SoftDelete
}

// setPaid updates the paid amount and the fields derived from it.
func (o *Order) setPaid(paid types.Money) {
	o.PaidAmount = types.Round(types.MaxZero(paid))
	o.RemainingAmount = types.MaxZero(o.TotalAmount.Sub(o.PaidAmount))
	o.PaymentStatus = DerivePaymentStatus(o.PaidAmount, o.TotalAmount)
}

// Payment is one installment against an Order.
type Payment struct {
	ID      int64       `db:"id" json:"id"`
	OrderID int64       `db:"order_id" json:"orderId"`
	Amount  types.Money `db:"amount" json:"amount"`
	Method  string      `db:"method" json:"method,omitempty"`
	PaidAt  time.Time   `db:"paid_at" json:"paidAt"`
	Notes   string      `db:"notes" json:"notes,omitempty"`

	entity.Audit
	entity.SoftDelete
}

// RepairPayment is the single settlement of a repair. Its totals derive from
// parts and labor.
type RepairPayment struct {
	ID          int64       `db:"id" json:"id"`
	RepairID    int64       `db:"repair_id" json:"repairId"`
	PartsAmount types.Money `db:"parts_amount" json:"partsAmount"`
	LaborAmount types.Money `db:"labor_amount" json:"laborAmount"`
	BaseAmount  types.Money `db:"base_amount" json:"baseAmount"`
	VATRate     types.Money `db:"vat_rate" json:"vatRate"`
	VATAmount   types.Money `db:"vat_amount" json:"vatAmount"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	Method      string      `db:"method" json:"method,omitempty"`
	PaidAt      time.Time   `db:"paid_at" json:"paidAt"`
	Notes       string      `db:"notes" json:"notes,omitempty"`

	entity.Audit
	entity.SoftDelete
}

// CreateOrderInput describes a new purchase or sale.
type CreateOrderInput struct {
	Kind Kind `validate:"required,oneof=purchase sale"`
	// TenantID defaults to the tenant of the request context.
	TenantID     int64
	Counterparty string `validate:"required,max=200"`
	Description  string `validate:"max=2000"`
	BaseAmount   types.Money
	// VATRate defaults to the configured rate.
	VATRate *types.Money
}

// PaymentInput is one installment.
type PaymentInput struct {
	Amount types.Money
	Method string `validate:"max=50"`
	// PaidAt defaults to now.
	PaidAt *time.Time
	Notes  string
}

// PaymentResult is the ledger state after a payment was added or removed.
type PaymentResult struct {
	PaymentID          int64         `json:"paymentId"`
	NewPaidAmount      types.Money   `json:"newPaidAmount"`
	NewRemainingAmount types.Money   `json:"newRemainingAmount"`
	NewStatus          PaymentStatus `json:"newStatus"`
}

// RepairPaymentInput settles a repair. Nil amounts fall back to the repair's
// labor cost and the configured VAT rate.
type RepairPaymentInput struct {
	LaborAmount *types.Money
	VATRate     *types.Money
	Method      string `validate:"max=50"`
	PaidAt      *time.Time
	Notes       string
}
