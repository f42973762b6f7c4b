package diagnostics

import (
	"context"
	"fmt"

	appctx "repairdesk/internal/core/context"
	"repairdesk/internal/core/entity"
	"repairdesk/internal/core/tx"
	"repairdesk/pkg/logger"
)

// Service stores and replaces the diagnostic snapshot of a repair.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new diagnostics service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Save persists a snapshot built from items, even when every check failed.
// It returns nil without writing when items is empty.
func (s *Service) Save(ctx context.Context, repairID int64, items []Item) (*Snapshot, error) {
	if len(items) == 0 {
		return nil, nil
	}
	return s.insert(ctx, repairID, items, MapDiagnosticItems(ctx, items))
}

func (s *Service) insert(ctx context.Context, repairID int64, items []Item, mapped MapResult) (*Snapshot, error) {
	snap := &Snapshot{
		RepairID: repairID,
		Fields:   mapped.Fields,
		Summary:  Summarize(items),
		Audit:    entity.NewAudit(ctx),
	}
	if err := s.repo.Insert(ctx, snap); err != nil {
		return nil, fmt.Errorf("insert diagnostics: %w", err)
	}
	return snap, nil
}

// Replace swaps the live snapshot for one built from items in one
// transaction. With no active items the live snapshot is only deleted and
// nil is returned.
func (s *Service) Replace(ctx context.Context, repairID int64, items []Item) (*Snapshot, error) {
	var snap *Snapshot
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existed, err := s.repo.SoftDeleteLive(ctx, repairID, appctx.GetUserID(ctx))
		if err != nil {
			return fmt.Errorf("delete live diagnostics: %w", err)
		}

		if mapped := MapDiagnosticItems(ctx, items); mapped.ActiveCount > 0 {
			snap, err = s.insert(ctx, repairID, items, mapped)
			if err != nil {
				return err
			}
		}

		logger.Debug(ctx, "diagnostics replaced",
			"repair_id", repairID, "had_previous", existed, "has_snapshot", snap != nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Get returns the live snapshot of a repair or NotFound.
func (s *Service) Get(ctx context.Context, repairID int64) (*Snapshot, error) {
	return s.repo.GetLive(ctx, repairID)
}

// Delete soft-deletes the live snapshot, if any.
func (s *Service) Delete(ctx context.Context, repairID int64) error {
	if _, err := s.repo.SoftDeleteLive(ctx, repairID, appctx.GetUserID(ctx)); err != nil {
		return fmt.Errorf("delete live diagnostics: %w", err)
	}
	return nil
}
