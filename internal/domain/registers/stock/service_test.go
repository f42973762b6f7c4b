package stock_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairdesk/internal/app"
	"repairdesk/internal/core/apperror"
	appctx "repairdesk/internal/core/context"
	"repairdesk/internal/core/types"
	"repairdesk/internal/domain/catalogs/customer"
	"repairdesk/internal/domain/catalogs/device"
	"repairdesk/internal/domain/catalogs/warehouse"
	"repairdesk/internal/domain/documents/repair"
	"repairdesk/internal/domain/registers/stock"
	"repairdesk/internal/infrastructure/storage/memory"
	"repairdesk/pkg/logger"
)

const tenantID = int64(1)

type fixture struct {
	ctx   context.Context
	svc   *app.Services
	store *memory.Store
	repos memory.Repositories
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	svc, store, repos := app.NewInMemory(nil)
	ctx := appctx.WithUser(logger.WithLogger(context.Background(), logger.Nop()), &appctx.UserContext{UserID: "u-1", TenantID: tenantID})
	return &fixture{ctx: ctx, svc: svc, store: store, repos: repos}
}

func (f *fixture) repair(t *testing.T) *repair.RepairOrder {
	t.Helper()
	order, err := f.svc.Repairs.Create(f.ctx, repair.CreateInput{
		NewCustomer:      &customer.NewCustomer{Name: "Mario Rossi"},
		NewDevice:        &device.NewDevice{Brand: "Apple", Model: "iPhone 12"},
		FaultDescription: "broken display",
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) item(t *testing.T, name string, qty int, price string) *warehouse.Item {
	t.Helper()
	item := &warehouse.Item{TenantID: tenantID, Name: name, Quantity: qty, UnitPrice: types.MustMoney(price)}
	require.NoError(t, f.svc.Warehouse.Create(f.ctx, item))
	return item
}

func (f *fixture) quantity(t *testing.T, itemID int64) int {
	t.Helper()
	item, err := f.repos.Warehouse.GetByID(f.ctx, itemID)
	require.NoError(t, err)
	return item.Quantity
}

func TestAddPart_InsufficientQuantity(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	item := f.item(t, "Display", 2, "80")

	_, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: item.ID, Quantity: 3})

	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "insufficient quantity", appErr.Message)
	assert.Equal(t, 3, appErr.Details["requested"])
	assert.Equal(t, 2, appErr.Details["available"])
	assert.Equal(t, 1, appErr.Details["shortfall"])

	parts, err := f.svc.Stock.ListParts(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, parts)
	assert.Equal(t, 2, f.quantity(t, item.ID), "adding a part never touches stock")
}

func TestAddPart_MergesSamePair(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	item := f.item(t, "Battery", 10, "12.50")

	first, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: item.ID, Quantity: 2, Notes: "original"})
	require.NoError(t, err)
	assert.Equal(t, "25.00", first.LineTotal.StringFixed(2))

	second, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: item.ID, Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	assert.Equal(t, "62.50", second.LineTotal.StringFixed(2))
	assert.Equal(t, "original", second.Notes)

	parts, err := f.svc.Stock.ListParts(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, 5, parts[0].Quantity)
}

func TestAddPart_KeepsSnapshotPrice(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	item := f.item(t, "Speaker", 10, "5")

	_, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: item.ID, Quantity: 1})
	require.NoError(t, err)

	stored, err := f.repos.Warehouse.GetByID(f.ctx, item.ID)
	require.NoError(t, err)
	stored.UnitPrice = types.MustMoney("9")
	require.NoError(t, f.repos.Warehouse.Save(f.ctx, stored))

	part, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: item.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "5.00", part.UnitPrice.StringFixed(2))
	assert.Equal(t, "10.00", part.LineTotal.StringFixed(2))
}

func TestAddPart_MergeChecksOnlyRequestedQuantity(t *testing.T) {
	f := newFixture(t)
	item := f.item(t, "Camera", 3, "30")

	merged := f.repair(t)
	_, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: merged.ID, WarehouseItemID: item.ID, Quantity: 2})
	require.NoError(t, err)
	part, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: merged.ID, WarehouseItemID: item.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, part.Quantity)

	updated := f.repair(t)
	line, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: updated.ID, WarehouseItemID: item.ID, Quantity: 2})
	require.NoError(t, err)
	line, err = f.svc.Stock.UpdatePart(f.ctx, line.ID, stock.UpdatePartInput{Quantity: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	assert.Equal(t, 3, f.quantity(t, item.ID), "adding parts does not touch stock")

	_, err = f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: merged.ID, WarehouseItemID: item.ID, Quantity: 4})
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, 4, appErr.Details["requested"])
}

func TestAddPart_Rejections(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	item := f.item(t, "Housing", 5, "20")
	gone := f.item(t, "Old frame", 5, "20")
	require.NoError(t, f.svc.Warehouse.Delete(f.ctx, gone.ID))

	_, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: item.ID, Quantity: 0})
	assert.True(t, apperror.IsValidation(err), "zero quantity")

	_, err = f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: 9999, Quantity: 1})
	assert.True(t, apperror.IsNotFound(err), "unknown item")

	_, err = f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: gone.ID, Quantity: 1})
	assert.True(t, apperror.IsNotFound(err), "deleted item")

	_, err = f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: 9999, WarehouseItemID: item.ID, Quantity: 1})
	assert.True(t, apperror.IsNotFound(err), "unknown repair")

	for _, code := range []string{"STARTED", "COMPLETED"} {
		_, err = f.svc.Repairs.UpdateStatus(f.ctx, order.RepairID, repair.StatusInput{Code: code})
		require.NoError(t, err)
	}
	_, err = f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: item.ID, Quantity: 1})
	assert.True(t, apperror.IsValidation(err), "completed repair")
}

func TestAddParts_ReportsEveryEntry(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	battery := f.item(t, "Battery", 5, "15")
	display := f.item(t, "Display", 1, "90")

	result := f.svc.Stock.AddParts(f.ctx, order.ID, []stock.PartRequest{
		{WarehouseItemID: battery.ID, Quantity: 2},
		{WarehouseItemID: display.ID, Quantity: 2},
		{WarehouseItemID: battery.ID, Quantity: 1},
	})

	assert.False(t, result.Success)
	require.Len(t, result.Outcomes, 3)
	assert.NoError(t, result.Outcomes[0].Err)
	assert.True(t, apperror.IsValidation(result.Outcomes[1].Err))
	assert.Nil(t, result.Outcomes[1].Part)
	require.NotNil(t, result.Outcomes[2].Part)
	assert.Equal(t, 3, result.Outcomes[2].Part.Quantity)
	assert.Len(t, result.Failed(), 1)

	ok := f.svc.Stock.AddParts(f.ctx, order.ID, []stock.PartRequest{{WarehouseItemID: battery.ID, Quantity: 1}})
	assert.True(t, ok.Success)
}

func TestUpdatePart(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	item := f.item(t, "Microphone", 3, "7")

	part, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: item.ID, Quantity: 2})
	require.NoError(t, err)

	notes := "use OEM part"
	updated, err := f.svc.Stock.UpdatePart(f.ctx, part.ID, stock.UpdatePartInput{Quantity: ptr(3), Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, "21.00", updated.LineTotal.StringFixed(2))
	assert.Equal(t, notes, updated.Notes)

	_, err = f.svc.Stock.UpdatePart(f.ctx, part.ID, stock.UpdatePartInput{Quantity: ptr(7)})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, 4, appErr.Details["requested"], "only the increase is checked")

	res, err := f.svc.Stock.ConsumeStock(f.ctx, order.ID)
	require.NoError(t, err)
	require.True(t, res.Success)

	_, err = f.svc.Stock.UpdatePart(f.ctx, part.ID, stock.UpdatePartInput{Quantity: ptr(1)})
	assert.True(t, apperror.IsValidation(err), "cannot shrink below consumed quantity")

	_, err = f.svc.Stock.UpdatePart(f.ctx, part.ID, stock.UpdatePartInput{Quantity: ptr(0)})
	assert.True(t, apperror.IsValidation(err))
}

func TestRemovePart(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	a := f.item(t, "Buttons", 5, "3")
	b := f.item(t, "Vibration motor", 5, "4")

	partA, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: a.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.svc.Stock.RemovePart(f.ctx, partA.ID))

	parts, err := f.svc.Stock.ListParts(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, parts)

	partB, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: b.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.Stock.ConsumeStock(f.ctx, order.ID)
	require.NoError(t, err)

	assert.True(t, apperror.IsValidation(f.svc.Stock.RemovePart(f.ctx, partB.ID)))
	assert.True(t, apperror.IsNotFound(f.svc.Stock.RemovePart(f.ctx, partA.ID)))
}

func TestConsumeStock_DeletedItemIsReported(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	battery := f.item(t, "Battery", 5, "15")
	display := f.item(t, "Display", 5, "90")

	_, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: battery.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: display.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.svc.Warehouse.Delete(f.ctx, display.ID))

	res, err := f.svc.Stock.ConsumeStock(f.ctx, order.ID)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, 1, res.ConsumedItems)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], fmt.Sprintf("warehouse item %d", display.ID))
	assert.Contains(t, res.Errors[0], "Display")

	stored, err := f.repos.Warehouse.GetByID(f.ctx, battery.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity)
	assert.Equal(t, "45.00", stored.TotalValue.StringFixed(2))
}

func TestConsumeStock_RepeatedCallsDoNotDoubleCount(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	battery := f.item(t, "Battery", 5, "15")

	part, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: battery.ID, Quantity: 2})
	require.NoError(t, err)

	first, err := f.svc.Stock.ConsumeStock(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ConsumedItems)

	second, err := f.svc.Stock.ConsumeStock(f.ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, 0, second.ConsumedItems)
	require.Len(t, second.Outcomes, 1)
	assert.Equal(t, stock.LineSkipped, second.Outcomes[0].Status)
	assert.Equal(t, 3, f.quantity(t, battery.ID))

	_, err = f.svc.Stock.UpdatePart(f.ctx, part.ID, stock.UpdatePartInput{Quantity: ptr(3)})
	require.NoError(t, err)

	third, err := f.svc.Stock.ConsumeStock(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, third.ConsumedItems)
	assert.Equal(t, 1, third.Outcomes[0].Quantity, "only the pending quantity is taken")
	assert.Equal(t, 2, f.quantity(t, battery.ID))
}

func TestConsumeStock_ShortageAtConsumeTime(t *testing.T) {
	f := newFixture(t)
	first := f.repair(t)
	second := f.repair(t)
	screen := f.item(t, "Screen", 3, "60")

	_, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: first.ID, WarehouseItemID: screen.ID, Quantity: 3})
	require.NoError(t, err)
	_, err = f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: second.ID, WarehouseItemID: screen.ID, Quantity: 2})
	require.NoError(t, err)

	res, err := f.svc.Stock.ConsumeStock(f.ctx, second.ID)
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = f.svc.Stock.ConsumeStock(f.ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.ConsumedItems)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "shortfall 2")
	assert.Equal(t, 1, f.quantity(t, screen.ID), "quantity never goes negative")
}

func TestConsumeStock_CountsMatchErrorFreeLines(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)

	var items []*warehouse.Item
	for i := 0; i < 4; i++ {
		item := f.item(t, fmt.Sprintf("Part %d", i), 2, "10")
		items = append(items, item)
		_, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: item.ID, Quantity: 2})
		require.NoError(t, err)
	}
	require.NoError(t, f.svc.Warehouse.Delete(f.ctx, items[1].ID))
	drained, err := f.repos.Warehouse.Decrement(f.ctx, items[3].ID, 1)
	require.NoError(t, err)
	require.Equal(t, 1, drained.Quantity)

	total := 0
	for i := 0; i < 3; i++ {
		res, err := f.svc.Stock.ConsumeStock(f.ctx, order.ID)
		require.NoError(t, err)
		total += res.ConsumedItems
		assert.Len(t, res.Errors, 2)
	}

	assert.Equal(t, 2, total)
	for _, item := range items {
		stored, err := f.repos.Warehouse.GetByID(f.ctx, item.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, stored.Quantity, 0)
	}
}

func TestConsumeStock_UnknownRepair(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Stock.ConsumeStock(f.ctx, 12345)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPartsTotal(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	a := f.item(t, "Battery", 5, "15.25")
	b := f.item(t, "Port", 5, "9.90")

	_, err := f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: a.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.Stock.AddPart(f.ctx, stock.AddPartInput{RepairID: order.ID, WarehouseItemID: b.ID, Quantity: 1})
	require.NoError(t, err)

	total, err := f.svc.Stock.PartsTotal(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "40.40", total.StringFixed(2))
}

type recordingLocker struct {
	mu       sync.Mutex
	acquired []string
	released []string
}

func (l *recordingLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired = append(l.acquired, key)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released = append(l.released, key)
		return nil
	}, nil
}

func TestConsumeStock_HoldsRepairLock(t *testing.T) {
	f := newFixture(t)
	order := f.repair(t)
	locker := &recordingLocker{}

	svc := stock.NewService(stock.ServiceConfig{
		Repo:      f.repos.Parts,
		Repairs:   f.repos.Repairs,
		Inventory: f.repos.Warehouse,
		TxManager: f.store,
		Locker:    locker,
	})

	_, err := svc.ConsumeStock(f.ctx, order.ID)
	require.NoError(t, err)

	key := fmt.Sprintf("lock:consume:%d", order.ID)
	assert.Equal(t, []string{key}, locker.acquired)
	assert.Equal(t, []string{key}, locker.released)
}

func ptr[T any](v T) *T { return &v }
