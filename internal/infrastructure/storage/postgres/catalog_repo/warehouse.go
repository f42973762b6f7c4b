package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"repairdesk/internal/core/apperror"
	"repairdesk/internal/domain/catalogs/warehouse"
	"repairdesk/internal/infrastructure/storage/postgres"
)

var _ warehouse.Repository = (*WarehouseRepo)(nil)

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	postgres.BaseRepo[warehouse.Item]
}

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txm *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{BaseRepo: postgres.NewBaseRepo[warehouse.Item](txm, "warehouse_items", "warehouse item")}
}

func (r *WarehouseRepo) Create(ctx context.Context, item *warehouse.Item) error {
	newID, err := r.Insert(ctx, item)
	if err != nil {
		return err
	}
	item.ID = newID
	return nil
}

// GetByID returns the item even when soft-deleted.
func (r *WarehouseRepo) GetByID(ctx context.Context, id int64) (*warehouse.Item, error) {
	return r.GetOne(ctx, r.Select().Where(squirrel.Eq{"id": id}), id)
}

func (r *WarehouseRepo) Save(ctx context.Context, item *warehouse.Item) error {
	return r.Update(ctx, item.ID, item,
		"name", "code", "quantity", "unit_price", "total_value",
		"updated_at", "updated_by", "is_deleted", "deleted_at")
}

// Decrement lowers the quantity in a single conditional statement, so two
// consumers can never drive it below zero.
func (r *WarehouseRepo) Decrement(ctx context.Context, id int64, qty int) (*warehouse.Item, error) {
	sql, args, err := postgres.Builder().
		Update(r.Table()).
		Set("quantity", squirrel.Expr("quantity - ?", qty)).
		Set("total_value", squirrel.Expr("ROUND((quantity - ?) * unit_price, 2)", qty)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "is_deleted": false}).
		Where(squirrel.GtOrEq{"quantity": qty}).
		Suffix("RETURNING " + joinCols(r.Columns())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build decrement: %w", err)
	}

	var item warehouse.Item
	err = pgxscan.Get(ctx, r.Querier(ctx), &item, sql, args...)
	if err == nil {
		return &item, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, postgres.MapError(fmt.Errorf("decrement warehouse item: %w", err), "warehouse item")
	}

	// Nothing matched: tell a shortage apart from a missing item.
	current, gerr := r.GetByID(ctx, id)
	if gerr != nil {
		return nil, gerr
	}
	if current.IsDeleted {
		return nil, apperror.NewNotFound("warehouse item", id)
	}
	return nil, apperror.NewInsufficientStock(id, qty, current.Quantity)
}
