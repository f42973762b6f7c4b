// Package memory is an in-process implementation of every repository
// contract. Transactions are serialized and rolled back by restoring a
// snapshot of all tables, which gives the same all-or-nothing behaviour as
// the PostgreSQL store. Used by tests and the scenario runner.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"repairdesk/internal/core/tx"
	"repairdesk/internal/domain/catalogs/customer"
	"repairdesk/internal/domain/catalogs/device"
	"repairdesk/internal/domain/catalogs/warehouse"
	"repairdesk/internal/domain/diagnostics"
	"repairdesk/internal/domain/documents/repair"
	"repairdesk/internal/domain/ledger"
	"repairdesk/internal/domain/registers/stock"
	"repairdesk/pkg/logger"
)

// Ensure compile-time interface compliance.
var _ tx.Manager = (*Store)(nil)

type tables struct {
	customers      map[int64]customer.Customer
	devices        map[int64]device.Device
	items          map[int64]warehouse.Item
	repairs        map[int64]repair.RepairOrder
	diagnostics    map[int64]diagnostics.Snapshot
	parts          map[int64]stock.RepairPart
	orders         map[int64]ledger.Order
	payments       map[int64]ledger.Payment
	repairPayments map[int64]ledger.RepairPayment
	sequences      map[string]int64
	codes          map[string]struct{}
	audit          []AuditRecord
}

func newTables() tables {
	return tables{
		customers:      make(map[int64]customer.Customer),
		devices:        make(map[int64]device.Device),
		items:          make(map[int64]warehouse.Item),
		repairs:        make(map[int64]repair.RepairOrder),
		diagnostics:    make(map[int64]diagnostics.Snapshot),
		parts:          make(map[int64]stock.RepairPart),
		orders:         make(map[int64]ledger.Order),
		payments:       make(map[int64]ledger.Payment),
		repairPayments: make(map[int64]ledger.RepairPayment),
		sequences:      make(map[string]int64),
		codes:          make(map[string]struct{}),
	}
}

func (t tables) clone() tables {
	return tables{
		customers:      maps.Clone(t.customers),
		devices:        maps.Clone(t.devices),
		items:          maps.Clone(t.items),
		repairs:        maps.Clone(t.repairs),
		diagnostics:    maps.Clone(t.diagnostics),
		parts:          maps.Clone(t.parts),
		orders:         maps.Clone(t.orders),
		payments:       maps.Clone(t.payments),
		repairPayments: maps.Clone(t.repairPayments),
		sequences:      maps.Clone(t.sequences),
		codes:          maps.Clone(t.codes),
		audit:          slices.Clone(t.audit),
	}
}

// Store holds all tables.
type Store struct {
	txMu sync.Mutex // held for the whole outermost transaction

	mu     sync.RWMutex
	t      tables
	nextID int64
}

// New creates an empty store.
func New() *Store {
	return &Store{t: newTables()}
}

type txKey struct{}

// RunInTransaction runs fn with every write rolled back if fn fails or
// panics. Nested calls join the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.t.clone()
	s.mu.RUnlock()

	rollback := func() {
		s.mu.Lock()
		s.t = snapshot
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		rollback()
		logger.Debug(ctx, "memory transaction rolled back", "error", err)
		return err
	}
	return nil
}

// InTransaction reports whether ctx carries a store transaction.
func InTransaction(ctx context.Context) bool {
	return ctx.Value(txKey{}) != nil
}

// id returns the next row id. Must be called with mu held.
func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Repositories bundles every repository backed by one store.
type Repositories struct {
	Customers   *CustomerRepo
	Devices     *DeviceRepo
	Warehouse   *WarehouseRepo
	Repairs     *RepairRepo
	Diagnostics *DiagnosticsRepo
	Parts       *PartRepo
	Ledger      *LedgerRepo
	Sequencer   *Sequencer
	Codes       *CodeChecker
	Audit       *AuditLog
}

// Repositories returns repositories sharing this store.
func (s *Store) Repositories() Repositories {
	return Repositories{
		Customers:   &CustomerRepo{s: s},
		Devices:     &DeviceRepo{s: s},
		Warehouse:   &WarehouseRepo{s: s},
		Repairs:     &RepairRepo{s: s},
		Diagnostics: &DiagnosticsRepo{s: s},
		Parts:       &PartRepo{s: s},
		Ledger:      &LedgerRepo{s: s},
		Sequencer:   &Sequencer{s: s},
		Codes:       &CodeChecker{s: s},
		Audit:       &AuditLog{s: s},
	}
}
