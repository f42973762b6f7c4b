package device

import "context"

// Repository defines the interface for Device persistence.
type Repository interface {
	Create(ctx context.Context, d *Device) error
	// GetByID returns NotFound for unknown or soft-deleted devices.
	GetByID(ctx context.Context, tenantID, id int64) (*Device, error)
	Exists(ctx context.Context, tenantID, id int64) (bool, error)
	// FindBySerial returns NotFound when the customer owns no live device
	// with the serial.
	FindBySerial(ctx context.Context, tenantID, customerID int64, serial string) (*Device, error)
}
