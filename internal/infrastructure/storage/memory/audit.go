package memory

import (
	"context"
	"slices"
	"time"

	appctx "repairdesk/internal/core/context"
	"repairdesk/internal/domain/audit"
)

var _ audit.Logger = (*AuditLog)(nil)

// AuditRecord is one stored audit entry.
type AuditRecord struct {
	EntityType string
	EntityID   int64
	Action     audit.Action
	UserID     string
	Changes    map[string]any
	CreatedAt  time.Time
}

// AuditLog implements audit.Logger.
type AuditLog struct{ s *Store }

func (l *AuditLog) LogChange(ctx context.Context, entityType string, entityID int64, action audit.Action, changes map[string]any) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.t.audit = append(l.s.t.audit, AuditRecord{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     appctx.GetUserID(ctx),
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

// Entries returns the records of an entity, oldest first.
func (l *AuditLog) Entries(entityType string, entityID int64) []AuditRecord {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return slices.DeleteFunc(slices.Clone(l.s.t.audit), func(r AuditRecord) bool {
		return r.EntityType != entityType || r.EntityID != entityID
	})
}
