package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter bulk-loads rows with the COPY protocol. Used to seed
// warehouse stock and customers.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice inserts rows into table. Each row matches columns.
//
//	n, err := inserter.CopyFromSlice(ctx, "warehouse_items",
//	    []string{"tenant_id", "name", "quantity", "unit_price", "total_value"}, rows)
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("CopyFromSlice requires transaction context")
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, MapError(fmt.Errorf("copy into %s: %w", table, err), table)
	}
	return n, nil
}

// CopyStructs inserts items into table using the given db-tagged columns.
func CopyStructs[T any](ctx context.Context, b *BatchInserter, table string, columns []string, items []T) (int64, error) {
	rows := make([][]any, 0, len(items))
	for i := range items {
		data := StructToMap(&items[i])
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = data[c]
		}
		rows = append(rows, row)
	}
	return b.CopyFromSlice(ctx, table, columns, rows)
}
