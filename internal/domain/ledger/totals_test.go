package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"repairdesk/internal/core/types"
)

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name  string
		paid  string
		total string
		want  PaymentStatus
	}{
		{"nothing paid", "0", "100", StatusUnpaid},
		{"one cent", "0.01", "100", StatusPartiallyPaid},
		{"half", "50", "100", StatusPartiallyPaid},
		{"exact", "100", "100", StatusPaid},
		{"over", "100.01", "100", StatusPaid},
		{"zero total", "0", "0", StatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePaymentStatus(types.MustMoney(tt.paid), types.MustMoney(tt.total)))
		})
	}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		base, rate, wantBase, wantVAT, wantTot string
	}{
		{"100", "22", "100.00", "22.00", "122.00"},
		{"100", "0", "100.00", "0.00", "100.00"},
		{"19.999", "10", "20.00", "2.00", "22.00"},
		{"70", "22", "70.00", "15.40", "85.40"},
	}
	for _, tt := range tests {
		got := ComputeTotals(types.MustMoney(tt.base), types.MustMoney(tt.rate))
		assert.Equal(t, tt.wantBase, got.Base.StringFixed(2), tt.base)
		assert.Equal(t, tt.wantVAT, got.VATAmount.StringFixed(2), tt.base)
		assert.Equal(t, tt.wantTot, got.Total.StringFixed(2), tt.base)
		assert.True(t, got.Base.Add(got.VATAmount).Equal(got.Total))
	}
}

func TestOrder_SetPaidKeepsBalance(t *testing.T) {
	o := &Order{TotalAmount: types.MustMoney("122")}

	o.setPaid(types.MustMoney("22.5"))
	assert.Equal(t, "99.50", o.RemainingAmount.StringFixed(2))
	assert.Equal(t, StatusPartiallyPaid, o.PaymentStatus)

	o.setPaid(types.MustMoney("-5"))
	assert.True(t, o.PaidAmount.IsZero())
	assert.Equal(t, "122.00", o.RemainingAmount.StringFixed(2))
	assert.Equal(t, StatusUnpaid, o.PaymentStatus)

	o.setPaid(types.MustMoney("122"))
	assert.True(t, o.RemainingAmount.IsZero())
	assert.Equal(t, StatusPaid, o.PaymentStatus)
}

func TestKind_CodeKind(t *testing.T) {
	assert.Equal(t, "purchase", string(KindPurchase.codeKind()))
	assert.Equal(t, "sale", string(KindSale.codeKind()))
}
