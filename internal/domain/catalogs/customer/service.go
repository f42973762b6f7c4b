package customer

import (
	"context"
	"fmt"

	"repairdesk/internal/core/entity"
	"repairdesk/internal/core/validate"
)

// Service exposes the customer operations the repair lifecycle depends on.
type Service struct {
	repo Repository
}

// NewService creates a new customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Exists reports whether a live customer with id belongs to tenantID.
func (s *Service) Exists(ctx context.Context, tenantID, id int64) (bool, error) {
	return s.repo.Exists(ctx, tenantID, id)
}

// Create registers a customer and returns its id.
func (s *Service) Create(ctx context.Context, tenantID int64, in NewCustomer) (int64, error) {
	if err := validate.Struct(in); err != nil {
		return 0, err
	}

	c := &Customer{
		TenantID: tenantID,
		Name:     in.Name,
		Phone:    in.Phone,
		Email:    in.Email,
		Audit:    entity.NewAudit(ctx),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}
	return c.ID, nil
}

// GetByID retrieves a customer.
func (s *Service) GetByID(ctx context.Context, tenantID, id int64) (*Customer, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}
