package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"repairdesk/internal/core/apperror"
)

// SQLSTATE codes the repositories translate.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally on the named constraint.
func IsUniqueViolation(err error, constraint ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	if len(constraint) == 0 {
		return true
	}
	for _, c := range constraint {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}

// MapError translates driver errors into apperror values. Unknown errors
// are returned unchanged.
func MapError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return apperror.NewDuplicate(entity, pgErr.ConstraintName, pgErr.Detail).WithCause(err)
	case foreignKeyViolation:
		return apperror.NewValidation(entity+" references a missing record").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case checkViolation:
		return apperror.NewValidation(entity+" violates "+pgErr.ConstraintName).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}
