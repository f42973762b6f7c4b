package memory

import (
	"context"
	"slices"
	"time"

	"repairdesk/internal/core/apperror"
	"repairdesk/internal/core/id"
	"repairdesk/internal/domain/diagnostics"
	"repairdesk/internal/domain/documents/repair"
	"repairdesk/internal/domain/registers/stock"
)

var (
	_ repair.Repository      = (*RepairRepo)(nil)
	_ diagnostics.Repository = (*DiagnosticsRepo)(nil)
	_ stock.Repository       = (*PartRepo)(nil)
)

// RepairRepo implements repair.Repository.
type RepairRepo struct{ s *Store }

func (r *RepairRepo) Create(ctx context.Context, o *repair.RepairOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.t.repairs {
		if existing.TenantID == o.TenantID && existing.RepairCode == o.RepairCode {
			return apperror.NewDuplicate(repair.EntityName, "repair_code", o.RepairCode)
		}
		if existing.RepairID == o.RepairID {
			return apperror.NewDuplicate(repair.EntityName, "repair_id", o.RepairID.String())
		}
	}
	o.ID = r.s.id()
	r.s.t.repairs[o.ID] = *o
	return nil
}

func (r *RepairRepo) find(match func(o *repair.RepairOrder) bool, key any) (*repair.RepairOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.t.repairs {
		if !o.IsDeleted && match(&o) {
			return &o, nil
		}
	}
	return nil, apperror.NewNotFound(repair.EntityName, key)
}

func (r *RepairRepo) GetByRepairID(ctx context.Context, repairID id.ID) (*repair.RepairOrder, error) {
	return r.find(func(o *repair.RepairOrder) bool { return o.RepairID == repairID }, repairID)
}

func (r *RepairRepo) GetByInternalID(ctx context.Context, internalID int64) (*repair.RepairOrder, error) {
	return r.find(func(o *repair.RepairOrder) bool { return o.ID == internalID }, internalID)
}

func (r *RepairRepo) GetByCode(ctx context.Context, tenantID int64, code string) (*repair.RepairOrder, error) {
	return r.find(func(o *repair.RepairOrder) bool {
		return o.TenantID == tenantID && o.RepairCode == code
	}, code)
}

func (r *RepairRepo) Update(ctx context.Context, o *repair.RepairOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.t.repairs[o.ID]
	if !ok {
		return apperror.NewNotFound(repair.EntityName, o.RepairID)
	}
	// code, external id and tenant are immutable
	o.RepairCode, o.RepairID, o.TenantID = existing.RepairCode, existing.RepairID, existing.TenantID
	r.s.t.repairs[o.ID] = *o
	return nil
}

// Count returns the number of repairs of a tenant, deleted included.
func (r *RepairRepo) Count(tenantID int64) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, o := range r.s.t.repairs {
		if o.TenantID == tenantID {
			n++
		}
	}
	return n
}

// DiagnosticsRepo implements diagnostics.Repository.
type DiagnosticsRepo struct{ s *Store }

func (r *DiagnosticsRepo) GetLive(ctx context.Context, repairID int64) (*diagnostics.Snapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.t.diagnostics {
		if d.RepairID == repairID && !d.IsDeleted {
			return &d, nil
		}
	}
	return nil, apperror.NewNotFound("diagnostics", repairID)
}

func (r *DiagnosticsRepo) Insert(ctx context.Context, snap *diagnostics.Snapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.t.diagnostics {
		if d.RepairID == snap.RepairID && !d.IsDeleted {
			return apperror.NewDuplicate("diagnostics", "repair_id", "live")
		}
	}
	snap.ID = r.s.id()
	r.s.t.diagnostics[snap.ID] = *snap
	return nil
}

func (r *DiagnosticsRepo) SoftDeleteLive(ctx context.Context, repairID int64, deletedBy string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for key, d := range r.s.t.diagnostics {
		if d.RepairID == repairID && !d.IsDeleted {
			d.MarkDeleted()
			d.UpdatedAt = time.Now().UTC()
			d.UpdatedBy = deletedBy
			r.s.t.diagnostics[key] = d
			return true, nil
		}
	}
	return false, nil
}

// History returns every snapshot of a repair, deleted included, oldest first.
func (r *DiagnosticsRepo) History(repairID int64) []diagnostics.Snapshot {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []diagnostics.Snapshot
	for _, d := range r.s.t.diagnostics {
		if d.RepairID == repairID {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b diagnostics.Snapshot) int { return int(a.ID - b.ID) })
	return out
}

// PartRepo implements stock.Repository.
type PartRepo struct{ s *Store }

func (r *PartRepo) Create(ctx context.Context, p *stock.RepairPart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.t.parts {
		if existing.RepairID == p.RepairID && existing.WarehouseItemID == p.WarehouseItemID && !existing.IsDeleted {
			return apperror.NewDuplicate(stock.EntityName, "warehouse_item_id", "live")
		}
	}
	p.ID = r.s.id()
	r.s.t.parts[p.ID] = *p
	return nil
}

func (r *PartRepo) GetByID(ctx context.Context, partID int64) (*stock.RepairPart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.t.parts[partID]
	if !ok || p.IsDeleted {
		return nil, apperror.NewNotFound(stock.EntityName, partID)
	}
	return &p, nil
}

func (r *PartRepo) FindLive(ctx context.Context, repairID, warehouseItemID int64) (*stock.RepairPart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.t.parts {
		if p.RepairID == repairID && p.WarehouseItemID == warehouseItemID && !p.IsDeleted {
			return &p, nil
		}
	}
	return nil, apperror.NewNotFound(stock.EntityName, warehouseItemID)
}

func (r *PartRepo) ListByRepair(ctx context.Context, repairID int64) ([]stock.RepairPart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]stock.RepairPart, 0)
	for _, p := range r.s.t.parts {
		if p.RepairID == repairID && !p.IsDeleted {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b stock.RepairPart) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r *PartRepo) Update(ctx context.Context, p *stock.RepairPart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.t.parts[p.ID]
	if !ok {
		return apperror.NewNotFound(stock.EntityName, p.ID)
	}
	// consumption is only moved by SetConsumed
	p.ConsumedQuantity = existing.ConsumedQuantity
	r.s.t.parts[p.ID] = *p
	return nil
}

func (r *PartRepo) SetConsumed(ctx context.Context, partID int64, expected, consumed int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.t.parts[partID]
	if !ok || p.IsDeleted || p.ConsumedQuantity != expected {
		return false, nil
	}
	p.ConsumedQuantity = consumed
	r.s.t.parts[partID] = p
	return true, nil
}
