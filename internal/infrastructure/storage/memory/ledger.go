package memory

import (
	"context"
	"slices"
	"time"

	"repairdesk/internal/core/apperror"
	"repairdesk/internal/domain/ledger"
)

var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository. Row locks are implied by the
// store's serialized transactions.
type LedgerRepo struct{ s *Store }

func (r *LedgerRepo) CreateOrder(ctx context.Context, o *ledger.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.t.orders {
		if existing.TenantID == o.TenantID && existing.Code == o.Code {
			return apperror.NewDuplicate("ledger order", "code", o.Code)
		}
	}
	o.ID = r.s.id()
	r.s.t.orders[o.ID] = *o
	return nil
}

func (r *LedgerRepo) GetOrder(ctx context.Context, orderID int64) (*ledger.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.t.orders[orderID]
	if !ok || o.IsDeleted {
		return nil, apperror.NewNotFound("ledger order", orderID)
	}
	return &o, nil
}

func (r *LedgerRepo) GetOrderForUpdate(ctx context.Context, orderID int64) (*ledger.Order, error) {
	return r.GetOrder(ctx, orderID)
}

func (r *LedgerRepo) UpdateOrderBalance(ctx context.Context, o *ledger.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.t.orders[o.ID]
	if !ok {
		return apperror.NewNotFound("ledger order", o.ID)
	}
	if o.PaidAmount.IsNegative() || o.RemainingAmount.IsNegative() {
		return apperror.NewValidation("ledger balance cannot be negative")
	}
	existing.PaidAmount = o.PaidAmount
	existing.RemainingAmount = o.RemainingAmount
	existing.PaymentStatus = o.PaymentStatus
	existing.UpdatedAt = o.UpdatedAt
	existing.UpdatedBy = o.UpdatedBy
	r.s.t.orders[o.ID] = existing
	return nil
}

func (r *LedgerRepo) CreatePayment(ctx context.Context, p *ledger.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	r.s.t.payments[p.ID] = *p
	return nil
}

func (r *LedgerRepo) GetPayment(ctx context.Context, paymentID int64) (*ledger.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.t.payments[paymentID]
	if !ok || p.IsDeleted {
		return nil, apperror.NewNotFound("payment", paymentID)
	}
	return &p, nil
}

func (r *LedgerRepo) ListPayments(ctx context.Context, orderID int64) ([]ledger.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]ledger.Payment, 0)
	for _, p := range r.s.t.payments {
		if p.OrderID == orderID && !p.IsDeleted {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b ledger.Payment) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r *LedgerRepo) SoftDeletePayment(ctx context.Context, paymentID int64, deletedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.t.payments[paymentID]
	if !ok || p.IsDeleted {
		return apperror.NewNotFound("payment", paymentID)
	}
	p.MarkDeleted()
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = deletedBy
	r.s.t.payments[paymentID] = p
	return nil
}

func (r *LedgerRepo) CreateRepairPayment(ctx context.Context, p *ledger.RepairPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.t.repairPayments {
		if existing.RepairID == p.RepairID && !existing.IsDeleted {
			return apperror.NewDuplicate("repair payment", "repair_id", "live")
		}
	}
	p.ID = r.s.id()
	r.s.t.repairPayments[p.ID] = *p
	return nil
}

func (r *LedgerRepo) GetRepairPayment(ctx context.Context, paymentID int64) (*ledger.RepairPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.t.repairPayments[paymentID]
	if !ok || p.IsDeleted {
		return nil, apperror.NewNotFound("repair payment", paymentID)
	}
	return &p, nil
}

func (r *LedgerRepo) GetRepairPaymentByRepair(ctx context.Context, repairID int64) (*ledger.RepairPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.t.repairPayments {
		if p.RepairID == repairID && !p.IsDeleted {
			return &p, nil
		}
	}
	return nil, apperror.NewNotFound("repair payment", repairID)
}

func (r *LedgerRepo) SoftDeleteRepairPayment(ctx context.Context, paymentID int64, deletedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.t.repairPayments[paymentID]
	if !ok || p.IsDeleted {
		return apperror.NewNotFound("repair payment", paymentID)
	}
	p.MarkDeleted()
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = deletedBy
	r.s.t.repairPayments[paymentID] = p
	return nil
}
