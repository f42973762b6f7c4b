// Package numerator provides the PostgreSQL counters and code lookups behind
// pkg/numerator.
package numerator

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	corenumerator "repairdesk/internal/core/numerator"
	"repairdesk/internal/infrastructure/storage/postgres"
)

var (
	_ corenumerator.Sequencer   = (*Sequencer)(nil)
	_ corenumerator.CodeChecker = (*CodeChecker)(nil)
)

// Sequencer keeps counters in sys_sequences. Next is a single UPSERT, so
// concurrent callers never receive the same value.
type Sequencer struct {
	txm *postgres.TxManager
}

// NewSequencer creates a sys_sequences backed sequencer.
func NewSequencer(txm *postgres.TxManager) *Sequencer {
	return &Sequencer{txm: txm}
}

func (s *Sequencer) Next(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.txm.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("next %s: %w", key, err)
	}
	return num, nil
}

func (s *Sequencer) Set(ctx context.Context, key string, value int64) error {
	if value < 0 {
		return fmt.Errorf("sequence value must not be negative: %d", value)
	}
	_, err := s.txm.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// codeColumns maps each kind to the table and column holding its codes.
var codeColumns = map[corenumerator.Kind]struct{ table, column string }{
	corenumerator.KindRepair:    {"repairs", "repair_code"},
	corenumerator.KindBooking:   {"bookings", "booking_code"},
	corenumerator.KindPurchase:  {"ledger_orders", "code"},
	corenumerator.KindSale:      {"ledger_orders", "code"},
	corenumerator.KindQuickNote: {"quick_notes", "note_code"},
}

// CodeChecker looks codes up in the table that owns them. Soft-deleted rows
// still count, so a code is never reissued.
type CodeChecker struct {
	txm *postgres.TxManager
}

// NewCodeChecker creates a code checker.
func NewCodeChecker(txm *postgres.TxManager) *CodeChecker {
	return &CodeChecker{txm: txm}
}

func (c *CodeChecker) Exists(ctx context.Context, kind corenumerator.Kind, tenantID int64, code string) (bool, error) {
	target, ok := codeColumns[kind]
	if !ok {
		return false, fmt.Errorf("no code table for kind %q", kind)
	}

	sub, args, err := postgres.Builder().
		Select("1").
		From(target.table).
		Where(squirrel.Eq{"tenant_id": tenantID, target.column: code}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build code lookup: %w", err)
	}

	var found bool
	if err := c.txm.GetQuerier(ctx).QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&found); err != nil {
		return false, fmt.Errorf("look up %s code: %w", kind, err)
	}
	return found, nil
}
