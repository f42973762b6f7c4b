package device

import (
	"context"
	"fmt"
	"strings"

	"repairdesk/internal/core/apperror"
	"repairdesk/internal/core/entity"
	"repairdesk/internal/core/validate"
)

// Service exposes the device operations the repair lifecycle depends on.
type Service struct {
	repo Repository
}

// NewService creates a new device service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Exists reports whether a live device with id belongs to tenantID.
func (s *Service) Exists(ctx context.Context, tenantID, id int64) (bool, error) {
	return s.repo.Exists(ctx, tenantID, id)
}

// Create registers a device owned by customerID and returns its id.
func (s *Service) Create(ctx context.Context, tenantID, customerID int64, in NewDevice) (int64, error) {
	if err := validate.Struct(in); err != nil {
		return 0, err
	}

	d := &Device{
		TenantID:     tenantID,
		Brand:        strings.TrimSpace(in.Brand),
		Model:        strings.TrimSpace(in.Model),
		SerialNumber: strings.TrimSpace(in.SerialNumber),
		IMEI:         strings.TrimSpace(in.IMEI),
		Audit:        entity.NewAudit(ctx),
	}
	if customerID > 0 {
		d.CustomerID = &customerID
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return 0, fmt.Errorf("create device: %w", err)
	}
	return d.ID, nil
}

// FindBySerial looks up a device of customerID by serial number. Returns
// (0, false, nil) when the customer has none registered.
func (s *Service) FindBySerial(ctx context.Context, tenantID, customerID int64, serial string) (int64, bool, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return 0, false, nil
	}
	d, err := s.repo.FindBySerial(ctx, tenantID, customerID, serial)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return d.ID, true, nil
}

// GetByID retrieves a device.
func (s *Service) GetByID(ctx context.Context, tenantID, id int64) (*Device, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}
