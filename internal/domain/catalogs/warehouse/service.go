package warehouse

import (
	"context"
	"fmt"

	"repairdesk/internal/core/apperror"
	"repairdesk/internal/core/entity"
)

// Service manages warehouse items.
type Service struct {
	repo Repository
}

// NewService creates a new warehouse service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new stocked item.
func (s *Service) Create(ctx context.Context, item *Item) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	item.Audit = entity.NewAudit(ctx)
	item.Recalculate()
	if err := s.repo.Create(ctx, item); err != nil {
		return fmt.Errorf("create warehouse item: %w", err)
	}
	return nil
}

// Get returns a live item.
func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.IsDeleted {
		return nil, apperror.NewNotFound("warehouse item", id)
	}
	return item, nil
}

// Restock adds qty units to an item.
func (s *Service) Restock(ctx context.Context, id int64, qty int) (*Item, error) {
	if qty <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Quantity += qty
	item.Recalculate()
	item.Touch(ctx)
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save warehouse item: %w", err)
	}
	return item, nil
}

// Delete soft-deletes an item. Lines already referencing it keep their snapshot price.
func (s *Service) Delete(ctx context.Context, id int64) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	item.MarkDeleted()
	item.Touch(ctx)
	return s.repo.Save(ctx, item)
}
