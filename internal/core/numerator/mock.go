package numerator

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	GenerateCodeFunc func(ctx context.Context, kind Kind, tenantID int64) string

	calls atomic.Int64
}

// GenerateCode implements Generator.
func (m *MockGenerator) GenerateCode(ctx context.Context, kind Kind, tenantID int64) string {
	n := m.calls.Add(1)
	if m.GenerateCodeFunc != nil {
		return m.GenerateCodeFunc(ctx, kind, tenantID)
	}
	// Default: predictable, unique per call
	cfg, _ := ConfigFor(kind)
	return fmt.Sprintf("%s-MOCK-%05d", cfg.Prefix, n)
}

// Calls returns how many codes were generated.
func (m *MockGenerator) Calls() int64 {
	return m.calls.Load()
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
