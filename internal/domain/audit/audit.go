// Package audit defines the change log contract used by the domain services.
package audit

import "context"

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionStatusChange Action = "status_change"
	ActionDelete       Action = "delete"
	ActionConsume      Action = "consume"
	ActionPayment      Action = "payment"
)

// Entity types recorded in the log.
const (
	EntityRepair        = "repair"
	EntityRepairPart    = "repair_part"
	EntityLedgerOrder   = "ledger_order"
	EntityRepairPayment = "repair_payment"
)

// Logger records entity changes. Implementations write inside the caller's
// transaction when one is active, so a rolled back operation leaves no entry.
type Logger interface {
	LogChange(ctx context.Context, entityType string, entityID int64, action Action, changes map[string]any) error
}

// Nop discards every entry.
type Nop struct{}

// LogChange implements Logger.
func (Nop) LogChange(context.Context, string, int64, Action, map[string]any) error { return nil }
