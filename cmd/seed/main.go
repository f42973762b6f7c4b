// Package main seeds a repair desk database with a warehouse catalog and a
// demo repair.
package main

import (
	"context"
	"fmt"
	"os"

	"repairdesk/internal/app"
	"repairdesk/internal/config"
	appctx "repairdesk/internal/core/context"
	"repairdesk/internal/core/entity"
	"repairdesk/internal/core/types"
	"repairdesk/internal/domain/catalogs/customer"
	"repairdesk/internal/domain/catalogs/device"
	"repairdesk/internal/domain/catalogs/warehouse"
	"repairdesk/internal/domain/diagnostics"
	"repairdesk/internal/domain/documents/repair"
	"repairdesk/internal/domain/registers/stock"
	"repairdesk/internal/infrastructure/storage/postgres"
	"repairdesk/pkg/logger"
)

const seedTenant = int64(1)

var catalog = []struct {
	code, name string
	qty        int
	price      string
}{
	{"BAT-IP12", "Batteria iPhone 12", 12, "24.90"},
	{"LCD-IP12", "Display iPhone 12", 5, "89.00"},
	{"CAM-S21", "Fotocamera posteriore Galaxy S21", 3, "45.50"},
	{"USB-C-PORT", "Connettore di ricarica USB-C", 20, "7.80"},
	{"SPK-GEN", "Altoparlante universale", 15, "5.40"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: !cfg.IsProduction()})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "seed", Name: "Seed", TenantID: seedTenant})
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())

	svc, backend, err := app.NewPostgres(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to connect", "error", err)
	}
	defer backend.Close()

	n, err := seedWarehouse(ctx, backend)
	if err != nil {
		log.Fatalw("failed to seed warehouse", "error", err)
	}
	log.Infow("warehouse seeded", "items", n)

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		code, err := seedDemoRepair(ctx, svc, backend)
		if err != nil {
			log.Fatalw("failed to seed demo repair", "error", err)
		}
		log.Infow("demo repair created", "code", code)
	}

	log.Info("seeding completed successfully")
}

// seedWarehouse bulk-loads the catalog into an empty warehouse.
func seedWarehouse(ctx context.Context, backend *app.Backend) (int64, error) {
	var count int64
	if err := backend.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM warehouse_items WHERE tenant_id = $1`, seedTenant,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count warehouse items: %w", err)
	}
	if count > 0 {
		logger.Info(ctx, "warehouse already seeded", "items", count)
		return 0, nil
	}

	items := make([]warehouse.Item, 0, len(catalog))
	for _, c := range catalog {
		item := warehouse.Item{
			TenantID:  seedTenant,
			Code:      c.code,
			Name:      c.name,
			Quantity:  c.qty,
			UnitPrice: types.MustMoney(c.price),
			Audit:     entity.NewAudit(ctx),
		}
		item.Recalculate()
		items = append(items, item)
	}

	cols := postgres.Without(postgres.ExtractDBColumns[warehouse.Item](), "id")
	var n int64
	err := backend.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = postgres.CopyStructs(ctx, backend.Batch, "warehouse_items", cols, items)
		return err
	})
	return n, err
}

// seedDemoRepair takes in a repair, reserves a battery and starts the work.
func seedDemoRepair(ctx context.Context, svc *app.Services, backend *app.Backend) (string, error) {
	order, err := svc.Repairs.Create(ctx, repair.CreateInput{
		NewCustomer:      &customer.NewCustomer{Name: "Mario Rossi", Phone: "+39 333 1234567"},
		NewDevice:        &device.NewDevice{Brand: "Apple", Model: "iPhone 12", SerialNumber: "F2LXK0DEMO"},
		FaultDescription: "La batteria si scarica in poche ore",
		Diagnostics: []diagnostics.Item{
			{ID: "battery", Label: "Batteria"},
			{ID: "wifi", Label: "Wi-Fi", Active: true},
			{ID: "lcd", Label: "Display", Active: true},
		},
	})
	if err != nil {
		return "", err
	}

	var batteryID int64
	if err := backend.Pool.QueryRow(ctx,
		`SELECT id FROM warehouse_items WHERE tenant_id = $1 AND code = $2 AND NOT is_deleted`,
		seedTenant, "BAT-IP12",
	).Scan(&batteryID); err != nil {
		return "", fmt.Errorf("find battery: %w", err)
	}

	if _, err := svc.Stock.AddPart(ctx, stock.AddPartInput{
		RepairID:        order.ID,
		WarehouseItemID: batteryID,
		Quantity:        1,
	}); err != nil {
		return "", err
	}
	if _, err := svc.Repairs.UpdateStatus(ctx, order.RepairID, repair.StatusInput{
		Code:  string(repair.StatusStarted),
		Notes: "Sostituzione batteria in corso",
	}); err != nil {
		return "", err
	}
	return order.RepairCode, nil
}
