// Package catalog_repo provides PostgreSQL implementations of the customer,
// device and warehouse catalogs.
package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"repairdesk/internal/domain/catalogs/customer"
	"repairdesk/internal/infrastructure/storage/postgres"
)

var _ customer.Repository = (*CustomerRepo)(nil)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	postgres.BaseRepo[customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{BaseRepo: postgres.NewBaseRepo[customer.Customer](txm, "customers", "customer")}
}

func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	newID, err := r.Insert(ctx, c)
	if err != nil {
		return err
	}
	c.ID = newID
	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, tenantID, id int64) (*customer.Customer, error) {
	return r.GetOne(ctx, r.Select().Where(squirrel.Eq{"id": id, "tenant_id": tenantID, "is_deleted": false}), id)
}

func (r *CustomerRepo) Exists(ctx context.Context, tenantID, id int64) (bool, error) {
	return exists(ctx, r.Querier(ctx), r.Table(), squirrel.Eq{"id": id, "tenant_id": tenantID, "is_deleted": false})
}
