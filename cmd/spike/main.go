// Package main walks the repair desk through intake, consumption and
// settlement on the in-memory store and prints what happened.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"repairdesk/internal/app"
	"repairdesk/internal/config"
	appctx "repairdesk/internal/core/context"
	corenumerator "repairdesk/internal/core/numerator"
	"repairdesk/internal/core/types"
	"repairdesk/internal/domain/catalogs/customer"
	"repairdesk/internal/domain/catalogs/device"
	"repairdesk/internal/domain/catalogs/warehouse"
	"repairdesk/internal/domain/diagnostics"
	"repairdesk/internal/domain/documents/repair"
	"repairdesk/internal/domain/ledger"
	"repairdesk/internal/domain/registers/stock"
	"repairdesk/pkg/logger"
)

const burstSize = 500

func main() {
	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "spike", Name: "Banco", TenantID: 1})
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())

	svc, _, _ := app.NewInMemory(config.Default())

	if err := run(ctx, svc); err != nil {
		log.Fatalw("spike failed", "error", err)
	}
	if err := burst(ctx, svc); err != nil {
		log.Fatalw("code burst failed", "error", err)
	}
	log.Info("spike completed")
}

func run(ctx context.Context, svc *app.Services) error {
	battery := &warehouse.Item{TenantID: 1, Name: "Batteria iPhone 12", Quantity: 2, UnitPrice: types.MustMoney("24.90")}
	display := &warehouse.Item{TenantID: 1, Name: "Display iPhone 12", Quantity: 4, UnitPrice: types.MustMoney("89")}
	for _, item := range []*warehouse.Item{battery, display} {
		if err := svc.Warehouse.Create(ctx, item); err != nil {
			return err
		}
	}

	// Intake with new customer, new device and diagnostics.
	order, err := svc.Repairs.Create(ctx, repair.CreateInput{
		NewCustomer:      &customer.NewCustomer{Name: "Mario Rossi"},
		NewDevice:        &device.NewDevice{Brand: "Apple", Model: "iPhone 12", SerialNumber: "F2LXK0"},
		FaultDescription: "Schermo rotto e batteria debole",
		LaborCost:        ptr(types.MustMoney("35")),
		Diagnostics: []diagnostics.Item{
			{ID: "wifi", Label: "Wi-Fi", Active: true},
			{ID: "lcd", Label: "Display"},
		},
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "intake", "code", order.RepairCode, "status", order.StatusLabel)

	// A shortage is rejected up front.
	if _, err := svc.Stock.AddPart(ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: battery.ID, Quantity: 3}); err != nil {
		logger.Info(ctx, "shortage rejected", "error", err)
	}

	// Two additions of the same item merge into one line.
	for _, qty := range []int{1, 1} {
		if _, err := svc.Stock.AddPart(ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: display.ID, Quantity: qty}); err != nil {
			return err
		}
	}
	if _, err := svc.Stock.AddPart(ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: battery.ID, Quantity: 1}); err != nil {
		return err
	}
	parts, err := svc.Stock.ListParts(ctx, order.ID)
	if err != nil {
		return err
	}
	logger.Info(ctx, "parts reserved", "lines", len(parts))

	// A deleted item is reported while the rest is consumed.
	if err := svc.Warehouse.Delete(ctx, battery.ID); err != nil {
		return err
	}
	res, err := svc.Stock.ConsumeStock(ctx, order.ID)
	if err != nil {
		return err
	}
	logger.Info(ctx, "stock consumed", "success", res.Success, "consumed", res.ConsumedItems, "errors", res.Errors)

	for _, code := range []repair.Status{repair.StatusStarted, repair.StatusCompleted} {
		if _, err := svc.Repairs.UpdateStatus(ctx, order.RepairID, repair.StatusInput{Code: string(code)}); err != nil {
			return err
		}
	}
	if _, err := svc.Repairs.Update(ctx, order.RepairID, repair.UpdateInput{Notes: "late edit"}); err != nil {
		logger.Info(ctx, "completed repair is frozen", "error", err)
	}

	payment, err := svc.Ledger.AddRepairPayment(ctx, order.RepairID, ledger.RepairPaymentInput{Method: "carta"})
	if err != nil {
		return err
	}
	logger.Info(ctx, "repair settled", "base", payment.BaseAmount, "vat", payment.VATAmount, "total", payment.TotalAmount)

	// A sale paid in two installments.
	sale, err := svc.Ledger.CreateOrder(ctx, ledger.CreateOrderInput{
		Kind:         ledger.KindSale,
		Counterparty: "Cliente al banco",
		BaseAmount:   types.MustMoney("100"),
		VATRate:      ptr(types.Zero()),
	})
	if err != nil {
		return err
	}
	for _, amount := range []string{"50", "50"} {
		r, err := svc.Ledger.AddPayment(ctx, sale.ID, ledger.PaymentInput{Amount: types.MustMoney(amount)})
		if err != nil {
			return err
		}
		logger.Info(ctx, "installment", "code", sale.Code, "paid", r.NewPaidAmount, "status", r.NewStatus)
	}
	if _, err := svc.Ledger.AddPayment(ctx, sale.ID, ledger.PaymentInput{Amount: types.MustMoney("0.01")}); err != nil {
		logger.Info(ctx, "overpayment rejected", "error", err)
	}
	return nil
}

// burst generates repair codes concurrently and checks they are distinct.
func burst(ctx context.Context, svc *app.Services) error {
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, burstSize)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(32)
	for i := 0; i < burstSize; i++ {
		g.Go(func() error {
			code := svc.Numerator.GenerateCode(gctx, corenumerator.KindRepair, 1)
			mu.Lock()
			defer mu.Unlock()
			if _, dup := seen[code]; dup {
				return fmt.Errorf("duplicate code %s", code)
			}
			seen[code] = struct{}{}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info(ctx, "code burst", "codes", len(seen))
	return nil
}

func ptr[T any](v T) *T { return &v }
