// Package register_repo provides the PostgreSQL repository for repair part
// lines.
package register_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"repairdesk/internal/domain/registers/stock"
	"repairdesk/internal/infrastructure/storage/postgres"
)

var _ stock.Repository = (*PartRepo)(nil)

// PartRepo implements stock.Repository. consumed_quantity is written only
// by SetConsumed.
type PartRepo struct {
	postgres.BaseRepo[stock.RepairPart]
}

// NewPartRepo creates a new repair part repository.
func NewPartRepo(txm *postgres.TxManager) *PartRepo {
	return &PartRepo{BaseRepo: postgres.NewBaseRepo[stock.RepairPart](txm, "repair_parts", stock.EntityName)}
}

func (r *PartRepo) Create(ctx context.Context, p *stock.RepairPart) error {
	newID, err := r.Insert(ctx, p)
	if err != nil {
		return err
	}
	p.ID = newID
	return nil
}

func (r *PartRepo) GetByID(ctx context.Context, partID int64) (*stock.RepairPart, error) {
	return r.GetLive(ctx, partID)
}

func (r *PartRepo) FindLive(ctx context.Context, repairID, warehouseItemID int64) (*stock.RepairPart, error) {
	q := r.Select().
		Where(squirrel.Eq{"repair_id": repairID, "warehouse_item_id": warehouseItemID, "is_deleted": false}).
		Suffix("FOR UPDATE")
	return r.GetOne(ctx, q, warehouseItemID)
}

func (r *PartRepo) ListByRepair(ctx context.Context, repairID int64) ([]stock.RepairPart, error) {
	return r.List(ctx, r.Select().
		Where(squirrel.Eq{"repair_id": repairID, "is_deleted": false}).
		OrderBy("id"))
}

func (r *PartRepo) Update(ctx context.Context, p *stock.RepairPart) error {
	return r.BaseRepo.Update(ctx, p.ID, p,
		"quantity", "unit_price", "line_total", "notes",
		"updated_at", "updated_by", "is_deleted", "deleted_at")
}

// SetConsumed is a compare-and-set on consumed_quantity.
func (r *PartRepo) SetConsumed(ctx context.Context, partID int64, expected, consumed int) (bool, error) {
	n, err := r.Exec(ctx, postgres.Builder().
		Update(r.Table()).
		Set("consumed_quantity", consumed).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": partID, "consumed_quantity": expected, "is_deleted": false}))
	return n == 1, err
}
