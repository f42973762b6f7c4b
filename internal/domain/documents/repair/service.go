package repair

import (
	"context"
	"errors"
	"fmt"
	"time"

	"repairdesk/internal/core/apperror"
	appctx "repairdesk/internal/core/context"
	"repairdesk/internal/core/entity"
	"repairdesk/internal/core/id"
	corenumerator "repairdesk/internal/core/numerator"
	"repairdesk/internal/core/tx"
	"repairdesk/internal/core/types"
	"repairdesk/internal/core/validate"
	"repairdesk/internal/domain"
	"repairdesk/internal/domain/audit"
	"repairdesk/internal/domain/catalogs/customer"
	"repairdesk/internal/domain/catalogs/device"
	"repairdesk/internal/domain/diagnostics"
	"repairdesk/pkg/logger"
)

// CustomerDirectory resolves and creates customers.
type CustomerDirectory interface {
	Exists(ctx context.Context, tenantID, id int64) (bool, error)
	Create(ctx context.Context, tenantID int64, in customer.NewCustomer) (int64, error)
}

// DeviceDirectory resolves and creates devices.
type DeviceDirectory interface {
	Exists(ctx context.Context, tenantID, id int64) (bool, error)
	FindBySerial(ctx context.Context, tenantID, customerID int64, serial string) (int64, bool, error)
	Create(ctx context.Context, tenantID, customerID int64, in device.NewDevice) (int64, error)
}

// DiagnosticsStore owns the diagnostic snapshot of a repair.
type DiagnosticsStore interface {
	Save(ctx context.Context, repairID int64, items []diagnostics.Item) (*diagnostics.Snapshot, error)
	Replace(ctx context.Context, repairID int64, items []diagnostics.Item) (*diagnostics.Snapshot, error)
	Delete(ctx context.Context, repairID int64) error
}

// ServiceConfig wires the repair service.
type ServiceConfig struct {
	Repo        Repository
	Customers   CustomerDirectory
	Devices     DeviceDirectory
	Diagnostics DiagnosticsStore
	Numerator   corenumerator.Generator
	TxManager   tx.Manager
	// Audit is optional.
	Audit audit.Logger
}

// Service manages repair orders.
type Service struct {
	repo        Repository
	customers   CustomerDirectory
	devices     DeviceDirectory
	diagnostics DiagnosticsStore
	numerator   corenumerator.Generator
	txManager   tx.Manager
	audit       audit.Logger
	hooks       *domain.HookRegistry[*RepairOrder]
	now         func() time.Time
}

// NewService creates a new repair service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Audit == nil {
		cfg.Audit = audit.Nop{}
	}
	return &Service{
		repo:        cfg.Repo,
		customers:   cfg.Customers,
		devices:     cfg.Devices,
		diagnostics: cfg.Diagnostics,
		numerator:   cfg.Numerator,
		txManager:   cfg.TxManager,
		audit:       cfg.Audit,
		hooks:       domain.NewHookRegistry[*RepairOrder](),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*RepairOrder] {
	return s.hooks
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create resolves or creates the customer and device, assigns a code and
// persists the order with its diagnostics. Every write happens in one
// transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*RepairOrder, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.CustomerID == nil && in.NewCustomer == nil {
		return nil, apperror.NewValidation("customer id or new customer is required")
	}
	if in.DeviceID == nil && in.NewDevice == nil {
		return nil, apperror.NewValidation("device id or new device is required")
	}
	if err := checkAmounts(in.EstimatedPrice, in.LaborCost); err != nil {
		return nil, err
	}
	priority, err := ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	tenantID := in.TenantID
	if tenantID == 0 {
		tenantID = appctx.GetTenantID(ctx)
	}
	var order *RepairOrder
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		customerID, err := s.resolveCustomer(ctx, tenantID, in)
		if err != nil {
			return err
		}
		deviceID, err := s.resolveDevice(ctx, tenantID, customerID, in)
		if err != nil {
			return err
		}

		now := s.now()
		technician := in.Technician
		if technician == "" {
			technician = appctx.GetTechnician(ctx)
		}

		order = &RepairOrder{
			RepairID:         id.New(),
			RepairCode:       s.numerator.GenerateCode(ctx, corenumerator.KindRepair, tenantID),
			TenantID:         tenantID,
			DeviceID:         deviceID,
			CustomerID:       customerID,
			FaultDescription: in.FaultDescription,
			Technician:       technician,
			Priority:         priority,
			EstimatedPrice:   roundPtr(in.EstimatedPrice),
			LaborCost:        types.Zero(),
			Notes:            AppendNote("", in.Notes, now),
			ReceivedAt:       now,
			Audit:            entity.NewAudit(ctx),
		}
		if in.LaborCost != nil {
			order.LaborCost = types.Round(*in.LaborCost)
		}
		order.setStatus(StatusReceived, "", now)

		if err := s.hooks.Run(ctx, domain.BeforeCreate, order); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, order); err != nil {
			return fmt.Errorf("create repair: %w", err)
		}

		if len(in.Diagnostics) > 0 {
			if _, err := s.diagnostics.Save(ctx, order.ID, in.Diagnostics); err != nil {
				return err
			}
		}

		return s.audit.LogChange(ctx, audit.EntityRepair, order.ID, audit.ActionCreate, order.auditState())
	})
	if err != nil {
		return nil, s.surface(ctx, "create repair", err)
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, order); err != nil {
		logger.Warn(ctx, "after-create hook failed", "repair_id", order.RepairID, "error", err)
	}

	logger.Info(ctx, "repair created",
		"repair_id", order.RepairID,
		"code", order.RepairCode,
		"customer_id", order.CustomerID,
		"device_id", order.DeviceID)

	return order, nil
}

func (s *Service) resolveCustomer(ctx context.Context, tenantID int64, in CreateInput) (int64, error) {
	if in.CustomerID != nil {
		if err := s.requireCustomer(ctx, tenantID, *in.CustomerID); err != nil {
			return 0, err
		}
		return *in.CustomerID, nil
	}
	customerID, err := s.customers.Create(ctx, tenantID, *in.NewCustomer)
	if err != nil {
		return 0, err
	}
	return customerID, nil
}

func (s *Service) resolveDevice(ctx context.Context, tenantID, customerID int64, in CreateInput) (int64, error) {
	if in.DeviceID != nil {
		if err := s.requireDevice(ctx, tenantID, *in.DeviceID); err != nil {
			return 0, err
		}
		return *in.DeviceID, nil
	}

	deviceID, found, err := s.devices.FindBySerial(ctx, tenantID, customerID, in.NewDevice.SerialNumber)
	if err != nil {
		return 0, fmt.Errorf("find device by serial: %w", err)
	}
	if found {
		return deviceID, nil
	}
	return s.devices.Create(ctx, tenantID, customerID, *in.NewDevice)
}

func (s *Service) requireCustomer(ctx context.Context, tenantID, customerID int64) error {
	ok, err := s.customers.Exists(ctx, tenantID, customerID)
	if err != nil {
		return fmt.Errorf("check customer: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("customer", customerID)
	}
	return nil
}

func (s *Service) requireDevice(ctx context.Context, tenantID, deviceID int64) error {
	ok, err := s.devices.Exists(ctx, tenantID, deviceID)
	if err != nil {
		return fmt.Errorf("check device: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("device", deviceID)
	}
	return nil
}

// UpdateStatus moves the order through the state machine and appends notes.
func (s *Service) UpdateStatus(ctx context.Context, repairID id.ID, in StatusInput) (*RepairOrder, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	to, err := ParseStatus(in.Code)
	if err != nil {
		return nil, err
	}

	var (
		order *RepairOrder
		from  Status
	)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err = s.repo.GetByRepairID(ctx, repairID)
		if err != nil {
			return err
		}
		from = order.StatusCode
		if err := ValidateTransition(from, to); err != nil {
			return err
		}

		now := s.now()
		order.setStatus(to, in.Label, now)
		order.Notes = AppendNote(order.Notes, in.Notes, now)
		order.Touch(ctx)

		if err := s.repo.Update(ctx, order); err != nil {
			return fmt.Errorf("update repair status: %w", err)
		}

		return s.audit.LogChange(ctx, audit.EntityRepair, order.ID, audit.ActionStatusChange, map[string]any{
			"from":  string(from),
			"to":    string(to),
			"label": order.StatusLabel,
		})
	})
	if err != nil {
		return nil, s.surface(ctx, "update repair status", err)
	}

	if err := s.hooks.Run(ctx, domain.AfterStatusChange, order); err != nil {
		logger.Warn(ctx, "after-status-change hook failed", "repair_id", order.RepairID, "error", err)
	}

	logger.Info(ctx, "repair status changed",
		"repair_id", order.RepairID,
		"from", from,
		"to", to)

	return order, nil
}

// Update applies a partial structural update. Orders in a terminal status
// are rejected unchanged.
func (s *Service) Update(ctx context.Context, repairID id.ID, in UpdateInput) (*RepairOrder, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := checkAmounts(in.EstimatedPrice, in.LaborCost); err != nil {
		return nil, err
	}

	var order *RepairOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetByRepairID(ctx, repairID)
		if err != nil {
			return err
		}
		if err := order.CanModify(); err != nil {
			return err
		}
		if in.isEmpty() {
			return nil
		}

		before := order.auditState()
		if err := s.apply(ctx, order, in); err != nil {
			return err
		}
		order.Touch(ctx)

		if err := s.repo.Update(ctx, order); err != nil {
			return fmt.Errorf("update repair: %w", err)
		}

		if in.Diagnostics != nil {
			if _, err := s.diagnostics.Replace(ctx, order.ID, in.Diagnostics); err != nil {
				return err
			}
		}

		changes := audit.Diff(before, order.auditState())
		if in.Diagnostics != nil {
			changes["diagnostics"] = len(in.Diagnostics)
		}
		return s.audit.LogChange(ctx, audit.EntityRepair, order.ID, audit.ActionUpdate, changes)
	})
	if err != nil {
		return nil, s.surface(ctx, "update repair", err)
	}

	if err := s.hooks.Run(ctx, domain.AfterUpdate, order); err != nil {
		logger.Warn(ctx, "after-update hook failed", "repair_id", order.RepairID, "error", err)
	}
	return order, nil
}

func (s *Service) apply(ctx context.Context, order *RepairOrder, in UpdateInput) error {
	if in.CustomerID != nil && *in.CustomerID != order.CustomerID {
		if err := s.requireCustomer(ctx, order.TenantID, *in.CustomerID); err != nil {
			return err
		}
		order.CustomerID = *in.CustomerID
	}
	if in.DeviceID != nil && *in.DeviceID != order.DeviceID {
		if err := s.requireDevice(ctx, order.TenantID, *in.DeviceID); err != nil {
			return err
		}
		order.DeviceID = *in.DeviceID
	}
	if in.FaultDescription != "" {
		order.FaultDescription = in.FaultDescription
	}
	if in.PerformedAction != "" {
		order.PerformedAction = in.PerformedAction
	}
	if in.Technician != "" {
		order.Technician = in.Technician
	}
	if in.Priority != "" {
		p, err := ParsePriority(in.Priority)
		if err != nil {
			return err
		}
		order.Priority = p
	}
	if in.EstimatedPrice != nil {
		order.EstimatedPrice = roundPtr(in.EstimatedPrice)
	}
	if in.LaborCost != nil {
		order.LaborCost = types.Round(*in.LaborCost)
	}
	order.Notes = AppendNote(order.Notes, in.Notes, s.now())
	return nil
}

// GetByID returns a live order by its external id.
func (s *Service) GetByID(ctx context.Context, repairID id.ID) (*RepairOrder, error) {
	return s.repo.GetByRepairID(ctx, repairID)
}

// GetByInternalID returns a live order by its storage id.
func (s *Service) GetByInternalID(ctx context.Context, internalID int64) (*RepairOrder, error) {
	return s.repo.GetByInternalID(ctx, internalID)
}

// GetByCode returns a live order by its code within a tenant.
func (s *Service) GetByCode(ctx context.Context, tenantID int64, code string) (*RepairOrder, error) {
	return s.repo.GetByCode(ctx, tenantID, code)
}

// Delete soft-deletes the order and its diagnostic snapshot.
func (s *Service) Delete(ctx context.Context, repairID id.ID) error {
	var order *RepairOrder
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetByRepairID(ctx, repairID)
		if err != nil {
			return err
		}

		order.MarkDeleted()
		order.Touch(ctx)
		if err := s.repo.Update(ctx, order); err != nil {
			return fmt.Errorf("delete repair: %w", err)
		}
		if err := s.diagnostics.Delete(ctx, order.ID); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, audit.EntityRepair, order.ID, audit.ActionDelete, map[string]any{
			"repair_code": order.RepairCode,
		})
	})
	if err != nil {
		return s.surface(ctx, "delete repair", err)
	}

	if err := s.hooks.Run(ctx, domain.AfterDelete, order); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "repair_id", order.RepairID, "error", err)
	}
	return nil
}

// surface passes typed errors through and wraps anything else as internal.
func (s *Service) surface(ctx context.Context, op string, err error) error {
	if apperror.IsAppError(err) || errors.Is(err, context.Canceled) {
		return err
	}
	logger.Error(ctx, op+" failed", "error", err)
	return apperror.NewInternal(err)
}

func terminalError(o *RepairOrder) error {
	return apperror.NewTerminalState(EntityName, o.RepairID, string(o.StatusCode))
}

func checkAmounts(estimated, labor *types.Money) error {
	if estimated != nil && estimated.IsNegative() {
		return apperror.NewValidation("estimated price must not be negative")
	}
	if labor != nil && labor.IsNegative() {
		return apperror.NewValidation("labor cost must not be negative")
	}
	return nil
}

func roundPtr(m *types.Money) *types.Money {
	if m == nil {
		return nil
	}
	r := types.Round(*m)
	return &r
}
