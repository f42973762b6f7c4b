package ledger

import (
	"repairdesk/internal/core/types"
)

// PaymentStatus is the display label of a ledger's settlement state.
type PaymentStatus string

const (
	StatusUnpaid        PaymentStatus = "Non Pagato"
	StatusPartiallyPaid PaymentStatus = "Parzialmente Pagato"
	StatusPaid          PaymentStatus = "Pagato"
)

// DerivePaymentStatus returns Paid once paid covers total, PartiallyPaid for
// any positive amount below total and Unpaid otherwise. A zero total counts
// as paid.
func DerivePaymentStatus(paid, total types.Money) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}

// Totals are the derived amounts of a payment record.
type Totals struct {
	Base      types.Money
	VATRate   types.Money
	VATAmount types.Money
	Total     types.Money
}

// ComputeTotals rounds base and derives VAT and total at ratePercent.
func ComputeTotals(base, ratePercent types.Money) Totals {
	base = types.Round(base)
	vat := types.VAT(base, ratePercent)
	return Totals{
		Base:      base,
		VATRate:   ratePercent,
		VATAmount: vat,
		Total:     base.Add(vat),
	}
}
