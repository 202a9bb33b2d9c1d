package dashboard

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/orders"
	"github.com/odyssey-erp/backoffice/internal/platform/db"
)

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.Querier
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.Querier) *PGRepository {
	return &PGRepository{db: q}
}

// CountProducts counts all products.
func (r *PGRepository) CountProducts(ctx context.Context) (int, error) {
	return r.count(ctx, "products")
}

// CountOrders counts all orders.
func (r *PGRepository) CountOrders(ctx context.Context) (int, error) {
	return r.count(ctx, "orders")
}

func (r *PGRepository) count(ctx context.Context, table string) (int, error) {
	sql, args, err := db.Builder.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("dashboard: build count %s: %w", table, err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("dashboard: count %s: %w", table, err)
	}
	return n, nil
}

// LowStockProducts lists products with quantity strictly below threshold.
func (r *PGRepository) LowStockProducts(ctx context.Context, threshold int) ([]products.Product, error) {
	sql, args, err := products.SelectProducts().
		Where(sq.Lt{"p.quantity": threshold}).
		OrderBy("p.quantity", "p.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("dashboard: build low stock: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: low stock: %w", err)
	}
	defer rows.Close()

	var out []products.Product
	for rows.Next() {
		p, err := products.ScanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("dashboard: scan low stock: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// RecentOrders lists the latest orders with user and status.
func (r *PGRepository) RecentOrders(ctx context.Context, limit int) ([]orders.Order, error) {
	sql, args, err := orders.SelectOrders().
		OrderBy("o.created_at DESC", "o.id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("dashboard: build recent orders: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: recent orders: %w", err)
	}
	defer rows.Close()

	var out []orders.Order
	for rows.Next() {
		o, err := orders.ScanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("dashboard: scan order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// SumOrderTotals adds up every order total.
func (r *PGRepository) SumOrderTotals(ctx context.Context) (float64, error) {
	var sum float64
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total), 0)::float8 FROM orders`).Scan(&sum); err != nil {
		return 0, fmt.Errorf("dashboard: revenue: %w", err)
	}
	return sum, nil
}

var _ Repository = (*PGRepository)(nil)
