// Package ledger_repo provides the PostgreSQL repository for purchase and
// sale ledgers, their payments and repair payments.
package ledger_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"repairdesk/internal/core/apperror"
	"repairdesk/internal/domain/ledger"
	"repairdesk/internal/infrastructure/storage/postgres"
)

var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	orders         postgres.BaseRepo[ledger.Order]
	payments       postgres.BaseRepo[ledger.Payment]
	repairPayments postgres.BaseRepo[ledger.RepairPayment]
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		orders:         postgres.NewBaseRepo[ledger.Order](txm, "ledger_orders", "ledger order"),
		payments:       postgres.NewBaseRepo[ledger.Payment](txm, "ledger_payments", "payment"),
		repairPayments: postgres.NewBaseRepo[ledger.RepairPayment](txm, "repair_payments", "repair payment"),
	}
}

func (r *LedgerRepo) CreateOrder(ctx context.Context, o *ledger.Order) error {
	newID, err := r.orders.Insert(ctx, o)
	if err != nil {
		return err
	}
	o.ID = newID
	return nil
}

func (r *LedgerRepo) GetOrder(ctx context.Context, orderID int64) (*ledger.Order, error) {
	return r.orders.GetLive(ctx, orderID)
}

// GetOrderForUpdate holds a row lock on the order until the transaction ends.
func (r *LedgerRepo) GetOrderForUpdate(ctx context.Context, orderID int64) (*ledger.Order, error) {
	q := r.orders.Select().
		Where(squirrel.Eq{"id": orderID, "is_deleted": false}).
		Suffix("FOR UPDATE")
	return r.orders.GetOne(ctx, q, orderID)
}

func (r *LedgerRepo) UpdateOrderBalance(ctx context.Context, o *ledger.Order) error {
	return r.orders.Update(ctx, o.ID, o,
		"paid_amount", "remaining_amount", "payment_status", "updated_at", "updated_by")
}

func (r *LedgerRepo) CreatePayment(ctx context.Context, p *ledger.Payment) error {
	newID, err := r.payments.Insert(ctx, p)
	if err != nil {
		return err
	}
	p.ID = newID
	return nil
}

func (r *LedgerRepo) GetPayment(ctx context.Context, paymentID int64) (*ledger.Payment, error) {
	return r.payments.GetLive(ctx, paymentID)
}

func (r *LedgerRepo) ListPayments(ctx context.Context, orderID int64) ([]ledger.Payment, error) {
	return r.payments.List(ctx, r.payments.Select().
		Where(squirrel.Eq{"order_id": orderID, "is_deleted": false}).
		OrderBy("paid_at", "id"))
}

func (r *LedgerRepo) SoftDeletePayment(ctx context.Context, paymentID int64, deletedBy string) error {
	return softDeleteOne(ctx, r.payments, paymentID, deletedBy)
}

func (r *LedgerRepo) CreateRepairPayment(ctx context.Context, p *ledger.RepairPayment) error {
	newID, err := r.repairPayments.Insert(ctx, p)
	if err != nil {
		return err
	}
	p.ID = newID
	return nil
}

func (r *LedgerRepo) GetRepairPayment(ctx context.Context, paymentID int64) (*ledger.RepairPayment, error) {
	return r.repairPayments.GetLive(ctx, paymentID)
}

func (r *LedgerRepo) GetRepairPaymentByRepair(ctx context.Context, repairID int64) (*ledger.RepairPayment, error) {
	return r.repairPayments.GetOne(ctx, r.repairPayments.Select().
		Where(squirrel.Eq{"repair_id": repairID, "is_deleted": false}), repairID)
}

func (r *LedgerRepo) SoftDeleteRepairPayment(ctx context.Context, paymentID int64, deletedBy string) error {
	return softDeleteOne(ctx, r.repairPayments, paymentID, deletedBy)
}

func softDeleteOne[T any](ctx context.Context, repo postgres.BaseRepo[T], rowID int64, deletedBy string) error {
	n, err := repo.SoftDelete(ctx, squirrel.Eq{"id": rowID}, deletedBy)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NewNotFound(repo.Entity(), rowID)
	}
	return nil
}
