package customer

import "context"

// Repository defines the interface for Customer persistence.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	// GetByID returns NotFound for unknown or soft-deleted customers.
	GetByID(ctx context.Context, tenantID, id int64) (*Customer, error)
	Exists(ctx context.Context, tenantID, id int64) (bool, error)
}
