package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairdesk/internal/app"
	"repairdesk/internal/core/apperror"
	appctx "repairdesk/internal/core/context"
	"repairdesk/internal/core/id"
	corenumerator "repairdesk/internal/core/numerator"
	"repairdesk/internal/core/types"
	"repairdesk/internal/domain/audit"
	"repairdesk/internal/domain/catalogs/customer"
	"repairdesk/internal/domain/catalogs/device"
	"repairdesk/internal/domain/catalogs/warehouse"
	"repairdesk/internal/domain/documents/repair"
	"repairdesk/internal/domain/ledger"
	"repairdesk/internal/domain/registers/stock"
	"repairdesk/internal/infrastructure/storage/memory"
	"repairdesk/pkg/logger"
)

type fixture struct {
	ctx   context.Context
	svc   *app.Services
	store *memory.Store
	repos memory.Repositories
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	svc, store, repos := app.NewInMemory(nil)
	ctx := appctx.WithUser(logger.WithLogger(context.Background(), logger.Nop()), &appctx.UserContext{UserID: "u-1", TenantID: 1})
	return &fixture{ctx: ctx, svc: svc, store: store, repos: repos}
}

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func (f *fixture) sale(t *testing.T, base string) *ledger.Order {
	t.Helper()
	order, err := f.svc.Ledger.CreateOrder(f.ctx, ledger.CreateOrderInput{
		Kind:         ledger.KindSale,
		Counterparty: "Bianchi SRL",
		BaseAmount:   types.MustMoney(base),
		VATRate:      money("0"),
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Ledger.CreateOrder(f.ctx, ledger.CreateOrderInput{
		Kind:         ledger.KindPurchase,
		Counterparty: " Ricambi SpA ",
		BaseAmount:   types.MustMoney("100"),
	})
	require.NoError(t, err)

	assert.Regexp(t, `^ACQ-\d{4}-00001$`, order.Code)
	assert.Equal(t, int64(1), order.TenantID)
	assert.Equal(t, "Ricambi SpA", order.Counterparty)
	assert.Equal(t, "22.00", order.VATAmount.StringFixed(2), "configured default rate")
	assert.Equal(t, "122.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, "122.00", order.RemainingAmount.StringFixed(2))
	assert.Equal(t, ledger.StatusUnpaid, order.PaymentStatus)

	second, err := f.svc.Ledger.CreateOrder(f.ctx, ledger.CreateOrderInput{
		Kind:         ledger.KindPurchase,
		Counterparty: "Ricambi SpA",
		BaseAmount:   types.MustMoney("10"),
	})
	require.NoError(t, err)
	assert.Regexp(t, `^ACQ-\d{4}-00002$`, second.Code)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   ledger.CreateOrderInput
	}{
		{"unknown kind", ledger.CreateOrderInput{Kind: "refund", Counterparty: "x"}},
		{"no counterparty", ledger.CreateOrderInput{Kind: ledger.KindSale}},
		{"negative base", ledger.CreateOrderInput{Kind: ledger.KindSale, Counterparty: "x", BaseAmount: types.MustMoney("-1")}},
		{"negative rate", ledger.CreateOrderInput{Kind: ledger.KindSale, Counterparty: "x", VATRate: money("-22")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Ledger.CreateOrder(f.ctx, tt.in)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestCreateOrder_RetriesTakenCode(t *testing.T) {
	f := newFixture(t)
	codes := []string{"SALE-2026-00001", "SALE-2026-00001", "SALE-2026-00002"}
	gen := &corenumerator.MockGenerator{}
	gen.GenerateCodeFunc = func(ctx context.Context, kind corenumerator.Kind, tenantID int64) string {
		return codes[gen.Calls()-1]
	}
	svc := ledger.NewService(ledger.ServiceConfig{
		Repo:      f.repos.Ledger,
		Numerator: gen,
		TxManager: f.store,
	})

	first, err := svc.CreateOrder(f.ctx, ledger.CreateOrderInput{Kind: ledger.KindSale, Counterparty: "a"})
	require.NoError(t, err)
	second, err := svc.CreateOrder(f.ctx, ledger.CreateOrderInput{Kind: ledger.KindSale, Counterparty: "b"})
	require.NoError(t, err)

	assert.Equal(t, "SALE-2026-00001", first.Code)
	assert.Equal(t, "SALE-2026-00002", second.Code)
	assert.Equal(t, int64(3), gen.Calls())
}

func TestCreateOrder_GivesUpAfterRetries(t *testing.T) {
	f := newFixture(t)
	gen := &corenumerator.MockGenerator{GenerateCodeFunc: func(context.Context, corenumerator.Kind, int64) string {
		return "SALE-2026-00001"
	}}
	svc := ledger.NewService(ledger.ServiceConfig{
		Repo:        f.repos.Ledger,
		Numerator:   gen,
		TxManager:   f.store,
		CodeRetries: 2,
	})

	_, err := svc.CreateOrder(f.ctx, ledger.CreateOrderInput{Kind: ledger.KindSale, Counterparty: "a"})
	require.NoError(t, err)
	_, err = svc.CreateOrder(f.ctx, ledger.CreateOrderInput{Kind: ledger.KindSale, Counterparty: "b"})

	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, int64(3), gen.Calls())
}

func TestPayments_InstallmentsSettleOrder(t *testing.T) {
	f := newFixture(t)
	order := f.sale(t, "100")
	assert.Equal(t, "100.00", order.TotalAmount.StringFixed(2))

	res, err := f.svc.Ledger.AddPayment(f.ctx, order.ID, ledger.PaymentInput{Amount: types.MustMoney("50"), Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, "50.00", res.NewPaidAmount.StringFixed(2))
	assert.Equal(t, "50.00", res.NewRemainingAmount.StringFixed(2))
	assert.Equal(t, ledger.StatusPartiallyPaid, res.NewStatus)

	res, err = f.svc.Ledger.AddPayment(f.ctx, order.ID, ledger.PaymentInput{Amount: types.MustMoney("50")})
	require.NoError(t, err)
	assert.Equal(t, "100.00", res.NewPaidAmount.StringFixed(2))
	assert.True(t, res.NewRemainingAmount.IsZero())
	assert.Equal(t, ledger.StatusPaid, res.NewStatus)

	stored, err := f.svc.Ledger.GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, stored.PaymentStatus)

	payments, err := f.svc.Ledger.ListPayments(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Equal(t, "cash", payments[0].Method)
}

func TestAddPayment_Rejections(t *testing.T) {
	f := newFixture(t)
	order := f.sale(t, "100")

	_, err := f.svc.Ledger.AddPayment(f.ctx, order.ID, ledger.PaymentInput{Amount: types.MustMoney("60")})
	require.NoError(t, err)

	_, err = f.svc.Ledger.AddPayment(f.ctx, order.ID, ledger.PaymentInput{Amount: types.MustMoney("40.01")})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientBalance, appErr.Code)

	for _, amount := range []string{"0", "-10", "0.001", "0.004"} {
		_, err = f.svc.Ledger.AddPayment(f.ctx, order.ID, ledger.PaymentInput{Amount: types.MustMoney(amount)})
		assert.True(t, apperror.IsValidation(err), amount)
	}

	payments, err := f.svc.Ledger.ListPayments(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1, "sub-cent amounts are not stored")

	_, err = f.svc.Ledger.AddPayment(f.ctx, 9999, ledger.PaymentInput{Amount: types.MustMoney("1")})
	assert.True(t, apperror.IsNotFound(err))

	stored, err := f.svc.Ledger.GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "60.00", stored.PaidAmount.StringFixed(2), "rejected payments leave the balance untouched")
}

func TestDeletePayment_IsExactInverse(t *testing.T) {
	f := newFixture(t)
	order := f.sale(t, "100")

	amounts := []string{"12.34", "0.66", "37", "50"}
	ids := make([]int64, 0, len(amounts))
	for _, a := range amounts {
		res, err := f.svc.Ledger.AddPayment(f.ctx, order.ID, ledger.PaymentInput{Amount: types.MustMoney(a)})
		require.NoError(t, err)
		ids = append(ids, res.PaymentID)
	}

	for i := len(ids) - 1; i >= 0; i-- {
		res, err := f.svc.Ledger.DeletePayment(f.ctx, ids[i])
		require.NoError(t, err)
		assert.True(t, res.NewPaidAmount.Add(res.NewRemainingAmount).Equal(order.TotalAmount))
	}

	stored, err := f.svc.Ledger.GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.PaidAmount.IsZero())
	assert.Equal(t, "100.00", stored.RemainingAmount.StringFixed(2))
	assert.Equal(t, ledger.StatusUnpaid, stored.PaymentStatus)

	_, err = f.svc.Ledger.DeletePayment(f.ctx, ids[0])
	assert.True(t, apperror.IsNotFound(err), "a payment is only reverted once")
}

func TestPayments_BalanceHoldsAcrossCycles(t *testing.T) {
	f := newFixture(t)
	order := f.sale(t, "250")

	for i := 0; i < 5; i++ {
		a, err := f.svc.Ledger.AddPayment(f.ctx, order.ID, ledger.PaymentInput{Amount: types.MustMoney("100")})
		require.NoError(t, err)
		_, err = f.svc.Ledger.AddPayment(f.ctx, order.ID, ledger.PaymentInput{Amount: types.MustMoney("150")})
		require.NoError(t, err)

		res, err := f.svc.Ledger.DeletePayment(f.ctx, a.PaymentID)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusPartiallyPaid, res.NewStatus)

		payments, err := f.svc.Ledger.ListPayments(f.ctx, order.ID)
		require.NoError(t, err)
		sum := types.Zero()
		for _, p := range payments {
			sum = sum.Add(p.Amount)
		}
		assert.True(t, sum.Equal(res.NewPaidAmount))

		for _, p := range payments {
			_, err := f.svc.Ledger.DeletePayment(f.ctx, p.ID)
			require.NoError(t, err)
		}
	}

	entries := f.repos.Audit.Entries(audit.EntityLedgerOrder, order.ID)
	assert.Len(t, entries, 1+5*4)
}

func TestAddPayment_PaidAtDefaultsToNow(t *testing.T) {
	f := newFixture(t)
	order := f.sale(t, "10")
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))

	_, err := f.svc.Ledger.AddPayment(f.ctx, order.ID, ledger.PaymentInput{Amount: types.MustMoney("4"), PaidAt: &at})
	require.NoError(t, err)
	before := time.Now().UTC()
	_, err = f.svc.Ledger.AddPayment(f.ctx, order.ID, ledger.PaymentInput{Amount: types.MustMoney("6")})
	require.NoError(t, err)

	payments, err := f.svc.Ledger.ListPayments(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, at.UTC(), payments[0].PaidAt)
	assert.False(t, payments[1].PaidAt.Before(before))
}

func (f *fixture) repairWithParts(t *testing.T) *repair.RepairOrder {
	t.Helper()
	order, err := f.svc.Repairs.Create(f.ctx, repair.CreateInput{
		NewCustomer:      &customer.NewCustomer{Name: "Luca Verdi"},
		NewDevice:        &device.NewDevice{Brand: "Samsung", Model: "S21"},
		FaultDescription: "battery drains",
		LaborCost:        money("40"),
	})
	require.NoError(t, err)

	item := &warehouse.Item{TenantID: 1, Name: "Battery", Quantity: 5, UnitPrice: types.MustMoney("15")}
	require.NoError(t, f.svc.Warehouse.Create(f.ctx, item))
	_, err = f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: item.ID, Quantity: 2})
	require.NoError(t, err)
	return order
}

func TestRepairPayment_DerivesFromPartsAndLabor(t *testing.T) {
	f := newFixture(t)
	order := f.repairWithParts(t)

	payment, err := f.svc.Ledger.AddRepairPayment(f.ctx, order.RepairID, ledger.RepairPaymentInput{Method: "card"})
	require.NoError(t, err)

	assert.Equal(t, order.ID, payment.RepairID)
	assert.Equal(t, "30.00", payment.PartsAmount.StringFixed(2))
	assert.Equal(t, "40.00", payment.LaborAmount.StringFixed(2))
	assert.Equal(t, "70.00", payment.BaseAmount.StringFixed(2))
	assert.Equal(t, "15.40", payment.VATAmount.StringFixed(2))
	assert.Equal(t, "85.40", payment.TotalAmount.StringFixed(2))

	got, err := f.svc.Ledger.GetRepairPayment(f.ctx, order.RepairID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)
}

func TestRepairPayment_OnePerRepair(t *testing.T) {
	f := newFixture(t)
	order := f.repairWithParts(t)

	first, err := f.svc.Ledger.AddRepairPayment(f.ctx, order.RepairID, ledger.RepairPaymentInput{})
	require.NoError(t, err)

	_, err = f.svc.Ledger.AddRepairPayment(f.ctx, order.RepairID, ledger.RepairPaymentInput{})
	assert.True(t, apperror.IsConflict(err))

	require.NoError(t, f.svc.Ledger.DeleteRepairPayment(f.ctx, first.ID))
	_, err = f.svc.Ledger.GetRepairPayment(f.ctx, order.RepairID)
	assert.True(t, apperror.IsNotFound(err))

	second, err := f.svc.Ledger.AddRepairPayment(f.ctx, order.RepairID, ledger.RepairPaymentInput{
		LaborAmount: money("10"),
		VATRate:     money("0"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "40.00", second.TotalAmount.StringFixed(2))
}

func TestRepairPayment_Rejections(t *testing.T) {
	f := newFixture(t)
	order := f.repairWithParts(t)

	_, err := f.svc.Ledger.AddRepairPayment(f.ctx, order.RepairID, ledger.RepairPaymentInput{LaborAmount: money("-1")})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.Ledger.AddRepairPayment(f.ctx, id.New(), ledger.RepairPaymentInput{})
	assert.True(t, apperror.IsNotFound(err))

	assert.True(t, apperror.IsNotFound(f.svc.Ledger.DeleteRepairPayment(f.ctx, 4242)))
}
