package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"repairdesk/internal/infrastructure/storage/postgres"
)

func exists(ctx context.Context, q postgres.Querier, table string, where squirrel.Sqlizer) (bool, error) {
	sub, args, err := postgres.Builder().Select("1").From(table).Where(where).ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var found bool
	if err := q.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&found); err != nil {
		return false, fmt.Errorf("exists in %s: %w", table, err)
	}
	return found, nil
}

func joinCols(cols []string) string {
	return strings.Join(cols, ", ")
}
