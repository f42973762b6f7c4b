// Package app wires the domain services onto a storage backend.
package app

import (
	"repairdesk/internal/config"
	corenumerator "repairdesk/internal/core/numerator"
	"repairdesk/internal/core/tx"
	"repairdesk/internal/domain/audit"
	"repairdesk/internal/domain/catalogs/customer"
	"repairdesk/internal/domain/catalogs/device"
	"repairdesk/internal/domain/catalogs/warehouse"
	"repairdesk/internal/domain/diagnostics"
	"repairdesk/internal/domain/documents/repair"
	"repairdesk/internal/domain/ledger"
	"repairdesk/internal/domain/registers/stock"
	"repairdesk/internal/infrastructure/storage/memory"
	"repairdesk/pkg/numerator"
)

// Repositories is the storage a deployment provides.
type Repositories struct {
	Customers   customer.Repository
	Devices     device.Repository
	Warehouse   warehouse.Repository
	Repairs     repair.Repository
	Diagnostics diagnostics.Repository
	Parts       stock.Repository
	Ledger      ledger.Repository
}

// Deps are the collaborators the services are built from.
type Deps struct {
	Repos     Repositories
	TxManager tx.Manager
	Sequencer corenumerator.Sequencer
	Codes     corenumerator.CodeChecker
	// Locker is optional; without it consumption and payments rely on
	// database locking alone.
	Locker tx.Locker
	// Audit is optional.
	Audit  audit.Logger
	Config *config.Config
}

// Services are the ready-to-use domain services.
type Services struct {
	Numerator   *numerator.Service
	Customers   *customer.Service
	Devices     *device.Service
	Warehouse   *warehouse.Service
	Diagnostics *diagnostics.Service
	Repairs     *repair.Service
	Stock       *stock.Service
	Ledger      *ledger.Service
}

// New builds the services.
func New(d Deps) *Services {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}

	svc := &Services{
		Numerator:   numerator.New(d.Sequencer, d.Codes, cfg.NumeratorOptions()),
		Customers:   customer.NewService(d.Repos.Customers),
		Devices:     device.NewService(d.Repos.Devices),
		Warehouse:   warehouse.NewService(d.Repos.Warehouse),
		Diagnostics: diagnostics.NewService(d.Repos.Diagnostics, d.TxManager),
	}

	svc.Repairs = repair.NewService(repair.ServiceConfig{
		Repo:        d.Repos.Repairs,
		Customers:   svc.Customers,
		Devices:     svc.Devices,
		Diagnostics: svc.Diagnostics,
		Numerator:   svc.Numerator,
		TxManager:   d.TxManager,
		Audit:       d.Audit,
	})

	svc.Stock = stock.NewService(stock.ServiceConfig{
		Repo:      d.Repos.Parts,
		Repairs:   svc.Repairs,
		Inventory: d.Repos.Warehouse,
		TxManager: d.TxManager,
		Locker:    d.Locker,
		Audit:     d.Audit,
	})

	svc.Ledger = ledger.NewService(ledger.ServiceConfig{
		Repo:           d.Repos.Ledger,
		Numerator:      svc.Numerator,
		TxManager:      d.TxManager,
		Repairs:        svc.Repairs,
		Parts:          svc.Stock,
		Locker:         d.Locker,
		Audit:          d.Audit,
		DefaultVATRate: cfg.VATRate(),
		CodeRetries:    cfg.LedgerCodeRetries,
	})

	return svc
}

// NewInMemory builds the services on a fresh in-memory store.
func NewInMemory(cfg *config.Config) (*Services, *memory.Store, memory.Repositories) {
	store := memory.New()
	repos := store.Repositories()

	svc := New(Deps{
		Repos: Repositories{
			Customers:   repos.Customers,
			Devices:     repos.Devices,
			Warehouse:   repos.Warehouse,
			Repairs:     repos.Repairs,
			Diagnostics: repos.Diagnostics,
			Parts:       repos.Parts,
			Ledger:      repos.Ledger,
		},
		TxManager: store,
		Sequencer: repos.Sequencer,
		Codes:     repos.Codes,
		Audit:     repos.Audit,
		Config:    cfg,
	})
	return svc, store, repos
}
