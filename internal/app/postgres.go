package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"repairdesk/internal/config"
	"repairdesk/internal/core/tx"
	"repairdesk/internal/infrastructure/cache"
	"repairdesk/internal/infrastructure/lock"
	pgnumerator "repairdesk/internal/infrastructure/numerator"
	"repairdesk/internal/infrastructure/storage/postgres"
	"repairdesk/internal/infrastructure/storage/postgres/catalog_repo"
	"repairdesk/internal/infrastructure/storage/postgres/document_repo"
	"repairdesk/internal/infrastructure/storage/postgres/ledger_repo"
	"repairdesk/internal/infrastructure/storage/postgres/register_repo"
	"repairdesk/pkg/logger"
)

// Backend holds the connections behind a PostgreSQL deployment.
type Backend struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Audit     *postgres.AuditService
	Batch     *postgres.BatchInserter
	// Redis is nil unless REDIS_ENABLED is set.
	Redis *redis.Client
}

// Close releases the connections.
func (b *Backend) Close() {
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	b.Pool.Close()
}

// NewPostgres connects to the database (and Redis when enabled), applies the
// schema and builds the services on top.
func NewPostgres(ctx context.Context, cfg *config.Config) (*Services, *Backend, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := postgres.NewPool(ctx, cfg.PoolConfig())
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.ApplySchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	txm := postgres.NewTxManager(pool)
	auditSvc, err := postgres.NewAuditService(txm)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	backend := &Backend{
		Pool:      pool,
		TxManager: txm,
		Audit:     auditSvc,
		Batch:     postgres.NewBatchInserter(txm),
	}

	var locker tx.Locker
	if cfg.RedisEnabled {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			backend.Close()
			return nil, nil, err
		}
		backend.Redis = client
		locker = lock.NewRedisLocker(client, lock.Options{TTL: cfg.LockTTL})
		logger.Info(ctx, "redis locking enabled", "addr", cfg.RedisAddr)
	}

	svc := New(Deps{
		Repos: Repositories{
			Customers:   catalog_repo.NewCustomerRepo(txm),
			Devices:     catalog_repo.NewDeviceRepo(txm),
			Warehouse:   catalog_repo.NewWarehouseRepo(txm),
			Repairs:     document_repo.NewRepairRepo(txm),
			Diagnostics: document_repo.NewDiagnosticsRepo(txm),
			Parts:       register_repo.NewPartRepo(txm),
			Ledger:      ledger_repo.NewLedgerRepo(txm),
		},
		TxManager: txm,
		Sequencer: pgnumerator.NewSequencer(txm),
		Codes:     pgnumerator.NewCodeChecker(txm),
		Locker:    locker,
		Audit:     auditSvc,
		Config:    cfg,
	})

	postgres.LogPoolStats(ctx, pool)
	return svc, backend, nil
}
