package memory

import (
	"context"
	"strings"

	"repairdesk/internal/core/apperror"
	"repairdesk/internal/domain/catalogs/customer"
	"repairdesk/internal/domain/catalogs/device"
	"repairdesk/internal/domain/catalogs/warehouse"
)

var (
	_ customer.Repository  = (*CustomerRepo)(nil)
	_ device.Repository    = (*DeviceRepo)(nil)
	_ warehouse.Repository = (*WarehouseRepo)(nil)
)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct{ s *Store }

func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	r.s.t.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, tenantID, id int64) (*customer.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.t.customers[id]
	if !ok || c.IsDeleted || c.TenantID != tenantID {
		return nil, apperror.NewNotFound("customer", id)
	}
	return &c, nil
}

func (r *CustomerRepo) Exists(ctx context.Context, tenantID, id int64) (bool, error) {
	_, err := r.GetByID(ctx, tenantID, id)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// Count returns the number of live customers of a tenant.
func (r *CustomerRepo) Count(tenantID int64) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, c := range r.s.t.customers {
		if c.TenantID == tenantID && !c.IsDeleted {
			n++
		}
	}
	return n
}

// DeviceRepo implements device.Repository.
type DeviceRepo struct{ s *Store }

func (r *DeviceRepo) Create(ctx context.Context, d *device.Device) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.id()
	r.s.t.devices[d.ID] = *d
	return nil
}

func (r *DeviceRepo) GetByID(ctx context.Context, tenantID, id int64) (*device.Device, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.t.devices[id]
	if !ok || d.IsDeleted || d.TenantID != tenantID {
		return nil, apperror.NewNotFound("device", id)
	}
	return &d, nil
}

func (r *DeviceRepo) Exists(ctx context.Context, tenantID, id int64) (bool, error) {
	_, err := r.GetByID(ctx, tenantID, id)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *DeviceRepo) FindBySerial(ctx context.Context, tenantID, customerID int64, serial string) (*device.Device, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found *device.Device
	for _, d := range r.s.t.devices {
		if d.TenantID != tenantID || d.IsDeleted || !strings.EqualFold(d.SerialNumber, serial) {
			continue
		}
		if d.CustomerID == nil || *d.CustomerID != customerID {
			continue
		}
		if found == nil || d.ID < found.ID {
			d := d
			found = &d
		}
	}
	if found == nil {
		return nil, apperror.NewNotFound("device", serial)
	}
	return found, nil
}

// Count returns the number of live devices of a tenant.
func (r *DeviceRepo) Count(tenantID int64) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, d := range r.s.t.devices {
		if d.TenantID == tenantID && !d.IsDeleted {
			n++
		}
	}
	return n
}

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct{ s *Store }

func (r *WarehouseRepo) Create(ctx context.Context, item *warehouse.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ID = r.s.id()
	r.s.t.items[item.ID] = *item
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id int64) (*warehouse.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.t.items[id]
	if !ok {
		return nil, apperror.NewNotFound("warehouse item", id)
	}
	return &item, nil
}

func (r *WarehouseRepo) Save(ctx context.Context, item *warehouse.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.t.items[item.ID]; !ok {
		return apperror.NewNotFound("warehouse item", item.ID)
	}
	if item.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative")
	}
	r.s.t.items[item.ID] = *item
	return nil
}

func (r *WarehouseRepo) Decrement(ctx context.Context, id int64, qty int) (*warehouse.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.t.items[id]
	if !ok || item.IsDeleted {
		return nil, apperror.NewNotFound("warehouse item", id)
	}
	if item.Quantity < qty {
		return nil, apperror.NewInsufficientStock(id, qty, item.Quantity)
	}
	item.Quantity -= qty
	item.Recalculate()
	r.s.t.items[id] = item
	return &item, nil
}
