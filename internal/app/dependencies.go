package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/marketplace/internal/health"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/memory"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/postgres"
)

// runtimeDependencies — хранилище, выбранное конфигурацией.
type runtimeDependencies struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	tx        domain.Transactor

	storageChecker healthcheck.Checker
	closeFn        func() error
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	if d == nil || d.closeFn == nil {
		return
	}
	if err := d.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		return newMemoryDependencies(), nil
	case StorageDriverPostgres:
		return newPostgresDependencies(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}
}

func newMemoryDependencies() *runtimeDependencies {
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()

	return &runtimeDependencies{
		customers: memory.NewCustomerRepository(),
		products:  products,
		orders:    orders,
		outbox:    outbox,
		tx:        memory.NewTransactor(),
		storageChecker: healthcheck.CheckFunc("storage", func(context.Context) error {
			return nil
		}),
	}
}

func newPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	dsn := strings.TrimSpace(cfg.PostgresDSN)
	if dsn == "" {
		return nil, fmt.Errorf("postgres storage requires a DSN")
	}

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply postgres migrations: %w", err)
		}
		logger.Info("postgres schema is up to date")
	}

	return &runtimeDependencies{
		customers:      postgres.NewCustomerRepository(store),
		products:       postgres.NewProductRepository(store),
		orders:         postgres.NewOrderRepository(store),
		outbox:         postgres.NewOutboxRepository(store),
		tx:             store,
		storageChecker: healthcheck.PingChecker("storage", store),
		closeFn:        store.Close,
	}, nil
}
