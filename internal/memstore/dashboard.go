package memstore

import (
	"context"
	"sort"

	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/dashboard"
	"github.com/odyssey-erp/backoffice/internal/orders"
)

// DashboardRepo implements dashboard.Repository.
type DashboardRepo struct{ s *Store }

var _ dashboard.Repository = (*DashboardRepo)(nil)

// CountProducts counts all products.
func (r *DashboardRepo) CountProducts(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.products), nil
}

// LowStockProducts lists products with quantity below threshold.
func (r *DashboardRepo) LowStockProducts(_ context.Context, threshold int) ([]products.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []products.Product
	for _, row := range r.s.products {
		if row.rec.Quantity < threshold {
			out = append(out, r.s.productLocked(row))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity == out[j].Quantity {
			return out[i].Name < out[j].Name
		}
		return out[i].Quantity < out[j].Quantity
	})
	return out, nil
}

// CountOrders counts all orders.
func (r *DashboardRepo) CountOrders(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.orders), nil
}

// RecentOrders lists the latest orders with user and status.
func (r *DashboardRepo) RecentOrders(_ context.Context, limit int) ([]orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]orders.Order, 0, len(r.s.orders))
	for _, row := range r.s.orders {
		out = append(out, r.s.orderLocked(row, false))
	}
	newestFirst(out, func(o orders.Order) (int64, int64) { return o.CreatedAt.UnixNano(), o.ID })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SumOrderTotals adds up every order total.
func (r *DashboardRepo) SumOrderTotals(_ context.Context) (float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sum float64
	for _, row := range r.s.orders {
		sum += row.rec.Total
	}
	return sum, nil
}
