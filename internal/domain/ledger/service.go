package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"repairdesk/internal/core/apperror"
	appctx "repairdesk/internal/core/context"
	"repairdesk/internal/core/entity"
	corenumerator "repairdesk/internal/core/numerator"
	"repairdesk/internal/core/tx"
	"repairdesk/internal/core/types"
	"repairdesk/internal/core/validate"
	"repairdesk/internal/domain/audit"
	"repairdesk/pkg/logger"
)

const defaultCodeRetries = 3

// ServiceConfig wires the ledger service.
type ServiceConfig struct {
	Repo      Repository
	Numerator corenumerator.Generator
	TxManager tx.Manager
	Repairs   RepairLookup
	Parts     PartsTotaler
	// Locker serializes balance changes per order. Optional.
	Locker tx.Locker
	// Audit is optional.
	Audit audit.Logger

	DefaultVATRate types.Money
	// CodeRetries bounds attempts after a duplicate code. Defaults to 3.
	CodeRetries int
}

// Service manages purchase and sale ledgers and repair payments.
type Service struct {
	repo        Repository
	numerator   corenumerator.Generator
	txManager   tx.Manager
	repairs     RepairLookup
	parts       PartsTotaler
	locker      tx.Locker
	audit       audit.Logger
	vatRate     types.Money
	codeRetries int
	now         func() time.Time
}

// NewService creates a new ledger service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Audit == nil {
		cfg.Audit = audit.Nop{}
	}
	if cfg.CodeRetries <= 0 {
		cfg.CodeRetries = defaultCodeRetries
	}
	return &Service{
		repo:        cfg.Repo,
		numerator:   cfg.Numerator,
		txManager:   cfg.TxManager,
		repairs:     cfg.Repairs,
		parts:       cfg.Parts,
		locker:      cfg.Locker,
		audit:       cfg.Audit,
		vatRate:     cfg.DefaultVATRate,
		codeRetries: cfg.CodeRetries,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder opens an unpaid purchase or sale with a sequential code. A
// duplicate code is retried with a fresh one.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.BaseAmount.IsNegative() {
		return nil, apperror.NewValidation("base amount must not be negative")
	}
	rate, err := s.rate(in.VATRate)
	if err != nil {
		return nil, err
	}

	tenantID := in.TenantID
	if tenantID == 0 {
		tenantID = appctx.GetTenantID(ctx)
	}
	totals := ComputeTotals(in.BaseAmount, rate)

	for attempt := 1; attempt <= s.codeRetries; attempt++ {
		order := &Order{
			Kind:          in.Kind,
			Code:          s.numerator.GenerateCode(ctx, in.Kind.codeKind(), tenantID),
			TenantID:      tenantID,
			Counterparty:  strings.TrimSpace(in.Counterparty),
			Description:   in.Description,
			BaseAmount:    totals.Base,
			VATRate:       totals.VATRate,
			VATAmount:     totals.VATAmount,
			TotalAmount:   totals.Total,
			PaymentStatus: StatusUnpaid,
			Audit:         entity.NewAudit(ctx),
		}
		order.setPaid(types.Zero())

		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.repo.CreateOrder(ctx, order); err != nil {
				return err
			}
			return s.audit.LogChange(ctx, audit.EntityLedgerOrder, order.ID, audit.ActionCreate, map[string]any{
				"kind":  string(order.Kind),
				"code":  order.Code,
				"total": order.TotalAmount.StringFixed(types.MoneyPlaces),
			})
		})
		if err == nil {
			logger.Info(ctx, "ledger order created", "kind", order.Kind, "code", order.Code, "total", order.TotalAmount)
			return order, nil
		}
		if !apperror.IsDuplicate(err) {
			return nil, s.surface(ctx, "create ledger order", err)
		}
		logger.Warn(ctx, "ledger code already taken, retrying", "code", order.Code, "attempt", attempt)
	}

	return nil, apperror.NewConflict("could not allocate a unique ledger code").
		WithDetail("kind", string(in.Kind)).
		WithDetail("attempts", s.codeRetries)
}

// GetOrder returns a live order.
func (s *Service) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

// ListPayments returns the live payments of an order.
func (s *Service) ListPayments(ctx context.Context, orderID int64) ([]Payment, error) {
	if _, err := s.repo.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, orderID)
}

// AddPayment records an installment. The amount, rounded to cents, must be
// positive and must not exceed the remaining balance.
func (s *Service) AddPayment(ctx context.Context, orderID int64, in PaymentInput) (PaymentResult, error) {
	if err := validate.Struct(in); err != nil {
		return PaymentResult{}, err
	}
	amount := types.Round(in.Amount)
	if !amount.IsPositive() {
		return PaymentResult{}, apperror.NewValidation("payment amount must be positive").
			WithDetail("amount", in.Amount.String())
	}

	release, err := s.lock(ctx, orderID)
	if err != nil {
		return PaymentResult{}, err
	}
	defer release()

	var result PaymentResult
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if amount.GreaterThan(order.RemainingAmount) {
			return apperror.NewInsufficientBalance(
				amount.StringFixed(types.MoneyPlaces),
				order.RemainingAmount.StringFixed(types.MoneyPlaces))
		}

		payment := &Payment{
			OrderID: orderID,
			Amount:  amount,
			Method:  strings.TrimSpace(in.Method),
			PaidAt:  s.paidAt(in.PaidAt),
			Notes:   in.Notes,
			Audit:   entity.NewAudit(ctx),
		}
		if err := s.repo.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		order.setPaid(order.PaidAmount.Add(amount))
		order.Touch(ctx)
		if err := s.repo.UpdateOrderBalance(ctx, order); err != nil {
			return fmt.Errorf("update order balance: %w", err)
		}

		result = resultOf(payment.ID, order)
		return s.audit.LogChange(ctx, audit.EntityLedgerOrder, orderID, audit.ActionPayment, map[string]any{
			"payment_id": payment.ID,
			"amount":     amount.StringFixed(types.MoneyPlaces),
			"paid":       order.PaidAmount.StringFixed(types.MoneyPlaces),
		})
	})
	if err != nil {
		return PaymentResult{}, s.surface(ctx, "add payment", err)
	}

	logger.Info(ctx, "payment added",
		"order_id", orderID,
		"payment_id", result.PaymentID,
		"paid", result.NewPaidAmount,
		"status", result.NewStatus)
	return result, nil
}

// DeletePayment soft-deletes an installment and reverts its effect on the
// balance.
func (s *Service) DeletePayment(ctx context.Context, paymentID int64) (PaymentResult, error) {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return PaymentResult{}, err
	}

	release, err := s.lock(ctx, payment.OrderID)
	if err != nil {
		return PaymentResult{}, err
	}
	defer release()

	var result PaymentResult
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		// Re-read under the order lock; a concurrent delete may have won.
		payment, err = s.repo.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}

		if err := s.repo.SoftDeletePayment(ctx, paymentID, appctx.GetUserID(ctx)); err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}

		order.setPaid(order.PaidAmount.Sub(payment.Amount))
		order.Touch(ctx)
		if err := s.repo.UpdateOrderBalance(ctx, order); err != nil {
			return fmt.Errorf("update order balance: %w", err)
		}

		result = resultOf(paymentID, order)
		return s.audit.LogChange(ctx, audit.EntityLedgerOrder, order.ID, audit.ActionDelete, map[string]any{
			"payment_id": paymentID,
			"amount":     payment.Amount.StringFixed(types.MoneyPlaces),
		})
	})
	if err != nil {
		return PaymentResult{}, s.surface(ctx, "delete payment", err)
	}

	logger.Info(ctx, "payment deleted",
		"order_id", payment.OrderID,
		"payment_id", paymentID,
		"status", result.NewStatus)
	return result, nil
}

func (s *Service) lock(ctx context.Context, orderID int64) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	release, err := s.locker.Acquire(ctx, fmt.Sprintf("lock:ledger:%d", orderID))
	if err != nil {
		return nil, err
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "failed to release ledger lock", "order_id", orderID, "error", err)
		}
	}, nil
}

func (s *Service) rate(override *types.Money) (types.Money, error) {
	if override == nil {
		return s.vatRate, nil
	}
	if override.IsNegative() {
		return types.Zero(), apperror.NewValidation("VAT rate must not be negative")
	}
	return *override, nil
}

func (s *Service) paidAt(at *time.Time) time.Time {
	if at != nil {
		return at.UTC()
	}
	return s.now()
}

func (s *Service) surface(ctx context.Context, op string, err error) error {
	if err == nil || apperror.IsAppError(err) || errors.Is(err, context.Canceled) {
		return err
	}
	logger.Error(ctx, op+" failed", "error", err)
	return apperror.NewInternal(err)
}

func resultOf(paymentID int64, o *Order) PaymentResult {
	return PaymentResult{
		PaymentID:          paymentID,
		NewPaidAmount:      o.PaidAmount,
		NewRemainingAmount: o.RemainingAmount,
		NewStatus:          o.PaymentStatus,
	}
}
