// Package document_repo provides PostgreSQL implementations for repair
// orders and their diagnostic snapshots.
package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"repairdesk/internal/core/id"
	"repairdesk/internal/domain/documents/repair"
	"repairdesk/internal/infrastructure/storage/postgres"
)

var _ repair.Repository = (*RepairRepo)(nil)

// repairMutableCols are rewritten by Update. Identity, code, tenant and
// creation stamps never change after intake.
var repairMutableCols = []string{
	"device_id", "customer_id",
	"fault_description", "performed_action", "technician",
	"status_code", "status_label", "notes", "priority",
	"estimated_price", "labor_cost",
	"started_at", "completed_at", "delivered_at",
	"updated_at", "updated_by", "is_deleted", "deleted_at",
}

// RepairRepo implements repair.Repository.
type RepairRepo struct {
	postgres.BaseRepo[repair.RepairOrder]
}

// NewRepairRepo creates a new repair repository.
func NewRepairRepo(txm *postgres.TxManager) *RepairRepo {
	return &RepairRepo{BaseRepo: postgres.NewBaseRepo[repair.RepairOrder](txm, "repairs", repair.EntityName)}
}

func (r *RepairRepo) Create(ctx context.Context, o *repair.RepairOrder) error {
	newID, err := r.Insert(ctx, o)
	if err != nil {
		return err
	}
	o.ID = newID
	return nil
}

func (r *RepairRepo) GetByRepairID(ctx context.Context, repairID id.ID) (*repair.RepairOrder, error) {
	return r.GetOne(ctx, r.Select().Where(squirrel.Eq{"repair_id": repairID, "is_deleted": false}), repairID.String())
}

func (r *RepairRepo) GetByInternalID(ctx context.Context, internalID int64) (*repair.RepairOrder, error) {
	return r.GetLive(ctx, internalID)
}

func (r *RepairRepo) GetByCode(ctx context.Context, tenantID int64, code string) (*repair.RepairOrder, error) {
	return r.GetOne(ctx, r.Select().Where(squirrel.Eq{"tenant_id": tenantID, "repair_code": code, "is_deleted": false}), code)
}

func (r *RepairRepo) Update(ctx context.Context, o *repair.RepairOrder) error {
	return r.BaseRepo.Update(ctx, o.ID, o, repairMutableCols...)
}
