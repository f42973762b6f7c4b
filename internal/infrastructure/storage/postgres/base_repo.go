package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"repairdesk/internal/core/apperror"
)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// BaseRepo provides the CRUD plumbing shared by the table repositories.
// Columns come from the "db" tags of T; the transaction, if any, comes
// from ctx.
type BaseRepo[T any] struct {
	txm    *TxManager
	table  string
	entity string
	cols   []string
}

// NewBaseRepo creates a repository for table. entity names the record in
// NotFound and Duplicate errors.
func NewBaseRepo[T any](txm *TxManager, table, entity string) BaseRepo[T] {
	return BaseRepo[T]{
		txm:    txm,
		table:  table,
		entity: entity,
		cols:   ExtractDBColumns[T](),
	}
}

// Querier returns the active transaction or the pool.
func (r BaseRepo[T]) Querier(ctx context.Context) Querier {
	return r.txm.GetQuerier(ctx)
}

// Table returns the table name.
func (r BaseRepo[T]) Table() string { return r.table }

// Entity returns the record name used in errors.
func (r BaseRepo[T]) Entity() string { return r.entity }

// Columns returns the mapped columns.
func (r BaseRepo[T]) Columns() []string { return r.cols }

// Insert writes every mapped column except id and returns the generated id.
func (r BaseRepo[T]) Insert(ctx context.Context, v *T) (int64, error) {
	data := Pick(StructToMap(v), Without(r.cols, "id"))

	sql, args, err := Builder().
		Insert(r.table).
		SetMap(data).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	var newID int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&newID); err != nil {
		return 0, MapError(fmt.Errorf("insert %s: %w", r.table, err), r.entity)
	}
	return newID, nil
}

// Select starts a query over the mapped columns.
func (r BaseRepo[T]) Select() squirrel.SelectBuilder {
	return Builder().Select(r.cols...).From(r.table)
}

// GetOne runs q and scans a single row. key is reported in NotFound.
func (r BaseRepo[T]) GetOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*T, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var v T
	if err := pgxscan.Get(ctx, r.Querier(ctx), &v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entity, key)
		}
		return nil, fmt.Errorf("get %s: %w", r.table, err)
	}
	return &v, nil
}

// GetLive returns the non-deleted row with the given id.
func (r BaseRepo[T]) GetLive(ctx context.Context, id int64) (*T, error) {
	return r.GetOne(ctx, r.Select().Where(squirrel.Eq{"id": id, "is_deleted": false}), id)
}

// List runs q and scans every row.
func (r BaseRepo[T]) List(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]T, 0)
	if err := pgxscan.Select(ctx, r.Querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	return out, nil
}

// Update writes the given columns of v to the row with id. Missing rows
// yield NotFound.
func (r BaseRepo[T]) Update(ctx context.Context, id int64, v *T, cols ...string) error {
	return r.UpdateWhere(ctx, squirrel.Eq{"id": id}, id, Pick(StructToMap(v), cols))
}

// UpdateWhere applies set to the rows matching where and returns NotFound
// when none matched.
func (r BaseRepo[T]) UpdateWhere(ctx context.Context, where squirrel.Sqlizer, key any, set map[string]any) error {
	n, err := r.Exec(ctx, Builder().Update(r.table).SetMap(set).Where(where))
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound(r.entity, key)
	}
	return nil
}

// Exec runs a write statement and returns the number of affected rows.
func (r BaseRepo[T]) Exec(ctx context.Context, q squirrel.Sqlizer) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build statement: %w", err)
	}
	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, MapError(fmt.Errorf("write %s: %w", r.table, err), r.entity)
	}
	return tag.RowsAffected(), nil
}

// SoftDelete marks the rows matching where deleted and reports how many
// were marked.
func (r BaseRepo[T]) SoftDelete(ctx context.Context, where squirrel.Sqlizer, deletedBy string) (int64, error) {
	return r.Exec(ctx, Builder().
		Update(r.table).
		Set("is_deleted", true).
		Set("deleted_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("updated_by", deletedBy).
		Where(where).
		Where(squirrel.Eq{"is_deleted": false}))
}
