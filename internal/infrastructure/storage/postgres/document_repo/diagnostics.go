package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"repairdesk/internal/domain/diagnostics"
	"repairdesk/internal/infrastructure/storage/postgres"
)

var _ diagnostics.Repository = (*DiagnosticsRepo)(nil)

// DiagnosticsRepo implements diagnostics.Repository. A partial unique index
// keeps at most one live snapshot per repair.
type DiagnosticsRepo struct {
	postgres.BaseRepo[diagnostics.Snapshot]
}

// NewDiagnosticsRepo creates a new diagnostics repository.
func NewDiagnosticsRepo(txm *postgres.TxManager) *DiagnosticsRepo {
	return &DiagnosticsRepo{BaseRepo: postgres.NewBaseRepo[diagnostics.Snapshot](txm, "diagnostics", "diagnostics")}
}

func (r *DiagnosticsRepo) GetLive(ctx context.Context, repairID int64) (*diagnostics.Snapshot, error) {
	return r.GetOne(ctx, r.Select().Where(squirrel.Eq{"repair_id": repairID, "is_deleted": false}), repairID)
}

func (r *DiagnosticsRepo) Insert(ctx context.Context, s *diagnostics.Snapshot) error {
	newID, err := r.BaseRepo.Insert(ctx, s)
	if err != nil {
		return err
	}
	s.ID = newID
	return nil
}

func (r *DiagnosticsRepo) SoftDeleteLive(ctx context.Context, repairID int64, deletedBy string) (bool, error) {
	n, err := r.SoftDelete(ctx, squirrel.Eq{"repair_id": repairID}, deletedBy)
	return n > 0, err
}
