package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/dashboard"
	"github.com/odyssey-erp/backoffice/internal/memstore"
	"github.com/odyssey-erp/backoffice/internal/orders"
	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/internal/users"
)

// Stores bundles the repositories behind the selected STORE_DRIVER.
type Stores struct {
	Users      users.Repository
	Categories categories.Repository
	Products   products.Repository
	Orders     orders.Repository
	Dashboard  dashboard.Repository

	pool *pgxpool.Pool
}

// OpenStores connects the configured driver. Postgres pools are migrated before use.
func OpenStores(ctx context.Context, cfg *Config, logger *slog.Logger) (*Stores, error) {
	if cfg.StoreDriver == StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return MemoryStores(memstore.New()), nil
	}
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: migrate: %w", err)
	}
	return PostgresStores(pool), nil
}

// PostgresStores wires every repository to pool.
func PostgresStores(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Users:      users.NewRepository(pool),
		Categories: categories.NewRepository(pool),
		Products:   products.NewRepository(pool),
		Orders:     orders.NewRepository(pool),
		Dashboard:  dashboard.NewRepository(pool),
		pool:       pool,
	}
}

// MemoryStores wires every repository to an in-process store.
func MemoryStores(store *memstore.Store) *Stores {
	return &Stores{
		Users:      store.Users(),
		Categories: store.Categories(),
		Products:   store.Products(),
		Orders:     store.Orders(),
		Dashboard:  store.Dashboard(),
	}
}

// Close releases the database pool, if any.
func (s *Stores) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}
