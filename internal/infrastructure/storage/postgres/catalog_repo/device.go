package catalog_repo

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"repairdesk/internal/domain/catalogs/device"
	"repairdesk/internal/infrastructure/storage/postgres"
)

var _ device.Repository = (*DeviceRepo)(nil)

// DeviceRepo implements device.Repository.
type DeviceRepo struct {
	postgres.BaseRepo[device.Device]
}

// NewDeviceRepo creates a new device repository.
func NewDeviceRepo(txm *postgres.TxManager) *DeviceRepo {
	return &DeviceRepo{BaseRepo: postgres.NewBaseRepo[device.Device](txm, "devices", "device")}
}

func (r *DeviceRepo) Create(ctx context.Context, d *device.Device) error {
	newID, err := r.Insert(ctx, d)
	if err != nil {
		return err
	}
	d.ID = newID
	return nil
}

func (r *DeviceRepo) GetByID(ctx context.Context, tenantID, id int64) (*device.Device, error) {
	return r.GetOne(ctx, r.Select().Where(squirrel.Eq{"id": id, "tenant_id": tenantID, "is_deleted": false}), id)
}

func (r *DeviceRepo) Exists(ctx context.Context, tenantID, id int64) (bool, error) {
	return exists(ctx, r.Querier(ctx), r.Table(), squirrel.Eq{"id": id, "tenant_id": tenantID, "is_deleted": false})
}

// FindBySerial matches serial numbers case-insensitively among the
// customer's devices. The oldest live device wins when several share a serial.
func (r *DeviceRepo) FindBySerial(ctx context.Context, tenantID, customerID int64, serial string) (*device.Device, error) {
	serial = strings.TrimSpace(serial)
	q := r.Select().
		Where(squirrel.Eq{"tenant_id": tenantID, "customer_id": customerID, "is_deleted": false}).
		Where("LOWER(serial_number) = LOWER(?)", serial).
		OrderBy("id")
	return r.GetOne(ctx, q, serial)
}
