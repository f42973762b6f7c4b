package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"repairdesk/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "repairs_code_key"})
	mapped := MapError(dup, "repair")
	assert.True(t, apperror.IsDuplicate(mapped))
	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(dup, "repairs_code_key"))
	assert.False(t, IsUniqueViolation(dup, "other"))

	check := &pgconn.PgError{Code: "23514", ConstraintName: "warehouse_items_quantity_check"}
	assert.True(t, apperror.IsValidation(MapError(check, "warehouse item")))

	plain := errors.New("boom")
	assert.Same(t, plain, MapError(plain, "repair"))
}
