package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"repairdesk/internal/core/apperror"
	"repairdesk/internal/core/entity"
	"repairdesk/internal/core/tx"
	"repairdesk/internal/core/types"
	"repairdesk/internal/core/validate"
	"repairdesk/internal/domain/audit"
	"repairdesk/internal/domain/catalogs/warehouse"
	"repairdesk/internal/domain/documents/repair"
	"repairdesk/pkg/logger"
)

var tracer = otel.Tracer("repairdesk/stock")

// ServiceConfig wires the stock service.
type ServiceConfig struct {
	Repo      Repository
	Repairs   RepairLookup
	Inventory Inventory
	TxManager tx.Manager
	// Locker serializes ConsumeStock per repair. Optional.
	Locker tx.Locker
	// Audit is optional.
	Audit audit.Logger
}

// Service manages repair parts and their consumption from stock.
type Service struct {
	repo      Repository
	repairs   RepairLookup
	inventory Inventory
	txManager tx.Manager
	locker    tx.Locker
	audit     audit.Logger
}

// NewService creates a new stock service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Audit == nil {
		cfg.Audit = audit.Nop{}
	}
	return &Service{
		repo:      cfg.Repo,
		repairs:   cfg.Repairs,
		inventory: cfg.Inventory,
		txManager: cfg.TxManager,
		locker:    cfg.Locker,
		audit:     cfg.Audit,
	}
}

// AddPart reserves a warehouse item for a repair. Only the requested quantity
// is checked against stock, which is not decremented. A second addition of
// the same item merges into the existing line at its snapshotted price.
func (s *Service) AddPart(ctx context.Context, in AddPartInput) (*RepairPart, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var part *RepairPart
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.editableRepair(ctx, in.RepairID)
		if err != nil {
			return err
		}
		item, err := s.liveItem(ctx, order.TenantID, in.WarehouseItemID)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindLive(ctx, in.RepairID, in.WarehouseItemID)
		if err != nil && !apperror.IsNotFound(err) {
			return fmt.Errorf("find repair part: %w", err)
		}

		if item.Quantity < in.Quantity {
			return apperror.NewInsufficientStock(item.ID, in.Quantity, item.Quantity)
		}

		if existing != nil {
			existing.Quantity += in.Quantity
			existing.Notes = joinNotes(existing.Notes, in.Notes)
			existing.Recalculate()
			existing.Touch(ctx)
			if err := s.repo.Update(ctx, existing); err != nil {
				return fmt.Errorf("update repair part: %w", err)
			}
			part = existing
		} else {
			part = &RepairPart{
				RepairID:        in.RepairID,
				WarehouseItemID: in.WarehouseItemID,
				Quantity:        in.Quantity,
				UnitPrice:       item.UnitPrice,
				Notes:           strings.TrimSpace(in.Notes),
				Audit:           entity.NewAudit(ctx),
			}
			part.Recalculate()
			if err := s.repo.Create(ctx, part); err != nil {
				return fmt.Errorf("create repair part: %w", err)
			}
		}

		return s.audit.LogChange(ctx, audit.EntityRepairPart, part.ID, audit.ActionCreate, map[string]any{
			"repair_id":         part.RepairID,
			"warehouse_item_id": part.WarehouseItemID,
			"added":             in.Quantity,
			"quantity":          part.Quantity,
			"line_total":        part.LineTotal.StringFixed(types.MoneyPlaces),
		})
	})
	if err != nil {
		return nil, s.surface(ctx, "add repair part", err)
	}
	return part, nil
}

// AddParts adds every request independently. One failing entry does not
// stop the others.
func (s *Service) AddParts(ctx context.Context, repairID int64, reqs []PartRequest) BatchResult {
	result := BatchResult{Success: true, Outcomes: make([]PartOutcome, 0, len(reqs))}
	for _, r := range reqs {
		part, err := s.AddPart(ctx, AddPartInput{
			RepairID:        repairID,
			WarehouseItemID: r.WarehouseItemID,
			Quantity:        r.Quantity,
			Notes:           r.Notes,
		})
		result.Outcomes = append(result.Outcomes, PartOutcome{WarehouseItemID: r.WarehouseItemID, Part: part, Err: err})
		if err != nil {
			result.Success = false
			logger.Warn(ctx, "batch part addition failed",
				"repair_id", repairID, "warehouse_item_id", r.WarehouseItemID, "error", err)
		}
	}
	return result
}

// UpdatePart changes a line's quantity or notes. An increase must be covered
// by current availability; a line cannot shrink below what was consumed.
func (s *Service) UpdatePart(ctx context.Context, partID int64, in UpdatePartInput) (*RepairPart, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var part *RepairPart
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		part, err = s.repo.GetByID(ctx, partID)
		if err != nil {
			return err
		}
		order, err := s.editableRepair(ctx, part.RepairID)
		if err != nil {
			return err
		}

		before := part.Quantity
		if in.Quantity != nil && *in.Quantity != part.Quantity {
			qty := *in.Quantity
			if qty < part.ConsumedQuantity {
				return apperror.NewValidation("quantity cannot be lower than the consumed quantity").
					WithDetail("consumed", part.ConsumedQuantity).
					WithDetail("requested", qty)
			}
			if delta := qty - part.Quantity; delta > 0 {
				item, err := s.liveItem(ctx, order.TenantID, part.WarehouseItemID)
				if err != nil {
					return err
				}
				if item.Quantity < delta {
					return apperror.NewInsufficientStock(item.ID, delta, item.Quantity)
				}
			}
			part.Quantity = qty
			part.Recalculate()
		}
		if in.Notes != nil {
			part.Notes = strings.TrimSpace(*in.Notes)
		}
		part.Touch(ctx)

		if err := s.repo.Update(ctx, part); err != nil {
			return fmt.Errorf("update repair part: %w", err)
		}
		return s.audit.LogChange(ctx, audit.EntityRepairPart, part.ID, audit.ActionUpdate, map[string]any{
			"quantity": map[string]any{"old": before, "new": part.Quantity},
		})
	})
	if err != nil {
		return nil, s.surface(ctx, "update repair part", err)
	}
	return part, nil
}

// RemovePart soft-deletes a line that has not been consumed yet.
func (s *Service) RemovePart(ctx context.Context, partID int64) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		part, err := s.repo.GetByID(ctx, partID)
		if err != nil {
			return err
		}
		if _, err := s.editableRepair(ctx, part.RepairID); err != nil {
			return err
		}
		if part.ConsumedQuantity > 0 {
			return apperror.NewValidation("part already consumed from stock").
				WithDetail("consumed", part.ConsumedQuantity)
		}

		part.MarkDeleted()
		part.Touch(ctx)
		if err := s.repo.Update(ctx, part); err != nil {
			return fmt.Errorf("remove repair part: %w", err)
		}
		return s.audit.LogChange(ctx, audit.EntityRepairPart, part.ID, audit.ActionDelete, map[string]any{
			"repair_id":         part.RepairID,
			"warehouse_item_id": part.WarehouseItemID,
		})
	})
	return s.surface(ctx, "remove repair part", err)
}

// ListParts returns the live lines of a repair.
func (s *Service) ListParts(ctx context.Context, repairID int64) ([]RepairPart, error) {
	if _, err := s.repairs.GetByInternalID(ctx, repairID); err != nil {
		return nil, err
	}
	return s.repo.ListByRepair(ctx, repairID)
}

// PartsTotal sums the line totals of the live lines of a repair.
func (s *Service) PartsTotal(ctx context.Context, repairID int64) (types.Money, error) {
	parts, err := s.repo.ListByRepair(ctx, repairID)
	if err != nil {
		return types.Zero(), err
	}
	total := types.Zero()
	for _, p := range parts {
		total = total.Add(p.LineTotal)
	}
	return types.Round(total), nil
}

// ConsumeStock takes every pending line of a repair out of stock. Lines that
// cannot be consumed are reported and skipped; the rest are processed. Only a
// missing repair or an infrastructure failure fails the whole call.
func (s *Service) ConsumeStock(ctx context.Context, repairID int64) (*ConsumeResult, error) {
	ctx, span := tracer.Start(ctx, "stock.ConsumeStock")
	defer span.End()
	span.SetAttributes(attribute.Int64("repair.id", repairID))

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, fmt.Sprintf("lock:consume:%d", repairID))
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn(ctx, "failed to release consume lock", "repair_id", repairID, "error", err)
			}
		}()
	}

	var result *ConsumeResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		result = &ConsumeResult{}

		order, err := s.repairs.GetByInternalID(ctx, repairID)
		if err != nil {
			return err
		}
		parts, err := s.repo.ListByRepair(ctx, repairID)
		if err != nil {
			return fmt.Errorf("list repair parts: %w", err)
		}

		for i := range parts {
			outcome, err := s.consumeLine(ctx, order, &parts[i])
			if err != nil {
				return err
			}
			if outcome.Status == LineFailed {
				logger.Warn(ctx, "line not consumed",
					"repair_id", repairID, "part_id", outcome.PartID, "reason", outcome.Error)
			}
			result.record(outcome)
		}

		return s.audit.LogChange(ctx, audit.EntityRepair, repairID, audit.ActionConsume, map[string]any{
			"consumed": result.ConsumedItems,
			"errors":   len(result.Errors),
		})
	})
	if err != nil {
		span.RecordError(err)
		return nil, s.surface(ctx, "consume stock", err)
	}

	result.Success = len(result.Errors) == 0
	span.SetAttributes(attribute.Int("stock.consumed", result.ConsumedItems), attribute.Int("stock.errors", len(result.Errors)))
	logger.Info(ctx, "stock consumed",
		"repair_id", repairID,
		"consumed", result.ConsumedItems,
		"errors", len(result.Errors))

	return result, nil
}

// consumeLine decrements stock for the pending quantity of one line. A
// non-nil error aborts the whole consumption.
func (s *Service) consumeLine(ctx context.Context, order *repair.RepairOrder, p *RepairPart) (LineOutcome, error) {
	pending := p.Pending()
	outcome := LineOutcome{PartID: p.ID, WarehouseItemID: p.WarehouseItemID, Quantity: pending}
	if pending == 0 {
		outcome.Status = LineSkipped
		return outcome, nil
	}

	fail := func(msg string) (LineOutcome, error) {
		outcome.Status = LineFailed
		outcome.Error = msg
		return outcome, nil
	}

	item, err := s.inventory.GetByID(ctx, p.WarehouseItemID)
	switch {
	case apperror.IsNotFound(err):
		return fail(fmt.Sprintf("warehouse item %d not found", p.WarehouseItemID))
	case err != nil:
		return outcome, fmt.Errorf("get warehouse item %d: %w", p.WarehouseItemID, err)
	case item.IsDeleted || item.TenantID != order.TenantID:
		return fail(fmt.Sprintf("warehouse item %d (%s) is no longer available", item.ID, item.Name))
	case item.Quantity < pending:
		return fail(shortageMessage(item, pending))
	}

	ok, err := s.repo.SetConsumed(ctx, p.ID, p.ConsumedQuantity, p.Quantity)
	if err != nil {
		return outcome, fmt.Errorf("mark part %d consumed: %w", p.ID, err)
	}
	if !ok {
		// Consumed concurrently since the lines were listed.
		outcome.Status = LineSkipped
		return outcome, nil
	}

	if _, err := s.inventory.Decrement(ctx, item.ID, pending); err != nil {
		if !apperror.IsValidation(err) && !apperror.IsNotFound(err) {
			return outcome, fmt.Errorf("decrement warehouse item %d: %w", item.ID, err)
		}
		if _, rerr := s.repo.SetConsumed(ctx, p.ID, p.Quantity, p.ConsumedQuantity); rerr != nil {
			return outcome, fmt.Errorf("restore part %d: %w", p.ID, rerr)
		}
		return fail(fmt.Sprintf("warehouse item %d (%s): %s", item.ID, item.Name, errorMessage(err)))
	}

	p.ConsumedQuantity = p.Quantity
	outcome.Status = LineConsumed
	return outcome, nil
}

// editableRepair returns the repair when parts may still change.
func (s *Service) editableRepair(ctx context.Context, repairID int64) (*repair.RepairOrder, error) {
	order, err := s.repairs.GetByInternalID(ctx, repairID)
	if err != nil {
		return nil, err
	}
	if err := order.CanModify(); err != nil {
		return nil, err
	}
	return order, nil
}

// liveItem returns a non-deleted item of tenantID or NotFound.
func (s *Service) liveItem(ctx context.Context, tenantID, itemID int64) (*warehouse.Item, error) {
	item, err := s.inventory.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.IsDeleted || item.TenantID != tenantID {
		return nil, apperror.NewNotFound("warehouse item", itemID)
	}
	return item, nil
}

func (s *Service) surface(ctx context.Context, op string, err error) error {
	if err == nil || apperror.IsAppError(err) || errors.Is(err, context.Canceled) {
		return err
	}
	logger.Error(ctx, op+" failed", "error", err)
	return apperror.NewInternal(err)
}

func shortageMessage(item *warehouse.Item, requested int) string {
	return fmt.Sprintf("warehouse item %d (%s): insufficient quantity, requested %d, available %d, shortfall %d",
		item.ID, item.Name, requested, item.Quantity, requested-item.Quantity)
}

func errorMessage(err error) string {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

func joinNotes(existing, added string) string {
	added = strings.TrimSpace(added)
	switch {
	case added == "":
		return existing
	case existing == "":
		return added
	}
	return existing + "\n" + added
}
