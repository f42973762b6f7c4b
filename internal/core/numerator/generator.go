// Package numerator provides domain contracts for business code generation.
// Implementations live in pkg/numerator and the infrastructure layer.
package numerator

import (
	"context"
)

// Generator produces unique business codes.
type Generator interface {
	// GenerateCode returns a code for kind scoped to tenantID.
	// It never fails: when the store cannot confirm uniqueness a degraded,
	// timestamp-disambiguated code is returned instead.
	GenerateCode(ctx context.Context, kind Kind, tenantID int64) string
}

// Sequencer reserves counter values atomically (reserve-next).
type Sequencer interface {
	// Next increments the counter identified by key and returns the new value.
	// The first call for a key returns 1.
	Next(ctx context.Context, key string) (int64, error)

	// Set forces the counter so that the next call to Next returns value+1.
	Set(ctx context.Context, key string, value int64) error
}

// CodeChecker reports whether a code is already used in the persistent store.
type CodeChecker interface {
	Exists(ctx context.Context, kind Kind, tenantID int64, code string) (bool, error)
}
