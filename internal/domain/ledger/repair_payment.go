package ledger

import (
	"context"
	"fmt"
	"strings"

	"repairdesk/internal/core/apperror"
	appctx "repairdesk/internal/core/context"
	"repairdesk/internal/core/entity"
	"repairdesk/internal/core/id"
	"repairdesk/internal/core/types"
	"repairdesk/internal/core/validate"
	"repairdesk/internal/domain/audit"
	"repairdesk/pkg/logger"
)

// AddRepairPayment settles a repair. The base is the sum of its live parts
// plus labor; a repair holds at most one live payment.
func (s *Service) AddRepairPayment(ctx context.Context, repairID id.ID, in RepairPaymentInput) (*RepairPayment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.LaborAmount != nil && in.LaborAmount.IsNegative() {
		return nil, apperror.NewValidation("labor amount must not be negative")
	}
	rate, err := s.rate(in.VATRate)
	if err != nil {
		return nil, err
	}

	var payment *RepairPayment
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.repairs.GetByID(ctx, repairID)
		if err != nil {
			return err
		}

		existing, err := s.repo.GetRepairPaymentByRepair(ctx, order.ID)
		switch {
		case err == nil:
			return apperror.NewConflict("repair already has a payment").
				WithDetail("payment_id", existing.ID)
		case !apperror.IsNotFound(err):
			return fmt.Errorf("get repair payment: %w", err)
		}

		parts, err := s.parts.PartsTotal(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("sum repair parts: %w", err)
		}
		labor := order.LaborCost
		if in.LaborAmount != nil {
			labor = *in.LaborAmount
		}
		labor = types.Round(labor)
		totals := ComputeTotals(parts.Add(labor), rate)

		payment = &RepairPayment{
			RepairID:    order.ID,
			PartsAmount: parts,
			LaborAmount: labor,
			BaseAmount:  totals.Base,
			VATRate:     totals.VATRate,
			VATAmount:   totals.VATAmount,
			TotalAmount: totals.Total,
			Method:      strings.TrimSpace(in.Method),
			PaidAt:      s.paidAt(in.PaidAt),
			Notes:       in.Notes,
			Audit:       entity.NewAudit(ctx),
		}
		if err := s.repo.CreateRepairPayment(ctx, payment); err != nil {
			if apperror.IsDuplicate(err) {
				return apperror.NewConflict("repair already has a payment").WithCause(err)
			}
			return fmt.Errorf("create repair payment: %w", err)
		}

		return s.audit.LogChange(ctx, audit.EntityRepairPayment, payment.ID, audit.ActionPayment, map[string]any{
			"repair_id": order.ID,
			"total":     payment.TotalAmount.StringFixed(types.MoneyPlaces),
		})
	})
	if err != nil {
		return nil, s.surface(ctx, "add repair payment", err)
	}

	logger.Info(ctx, "repair payment added",
		"repair_id", repairID,
		"payment_id", payment.ID,
		"total", payment.TotalAmount)
	return payment, nil
}

// GetRepairPayment returns the live payment of a repair.
func (s *Service) GetRepairPayment(ctx context.Context, repairID id.ID) (*RepairPayment, error) {
	order, err := s.repairs.GetByID(ctx, repairID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetRepairPaymentByRepair(ctx, order.ID)
}

// DeleteRepairPayment soft-deletes a repair payment so a new one can be taken.
func (s *Service) DeleteRepairPayment(ctx context.Context, paymentID int64) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		payment, err := s.repo.GetRepairPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := s.repo.SoftDeleteRepairPayment(ctx, paymentID, appctx.GetUserID(ctx)); err != nil {
			return fmt.Errorf("delete repair payment: %w", err)
		}
		return s.audit.LogChange(ctx, audit.EntityRepairPayment, paymentID, audit.ActionDelete, map[string]any{
			"repair_id": payment.RepairID,
		})
	})
	if err != nil {
		return s.surface(ctx, "delete repair payment", err)
	}

	logger.Info(ctx, "repair payment deleted", "payment_id", paymentID)
	return nil
}
