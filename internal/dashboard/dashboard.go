// Package dashboard aggregates catalog and order metrics for the back office home page.
package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/orders"
)

const (
	// LowStockThreshold flags products with fewer units than this.
	LowStockThreshold = 5
	// RecentOrdersLimit caps the recent orders panel.
	RecentOrdersLimit = 5
)

// Repository exposes the aggregate queries behind the dashboard.
type Repository interface {
	CountProducts(ctx context.Context) (int, error)
	LowStockProducts(ctx context.Context, threshold int) ([]products.Product, error)
	CountOrders(ctx context.Context) (int, error)
	RecentOrders(ctx context.Context, limit int) ([]orders.Order, error)
	SumOrderTotals(ctx context.Context) (float64, error)
}

// ImageLinker turns a stored image path into a public URL.
type ImageLinker interface {
	URL(path string) string
}

// Summary is the dashboard payload.
type Summary struct {
	TotalProducts    int
	LowStockProducts []products.Product
	TotalOrders      int
	RecentOrders     []orders.Order
	TotalRevenue     float64
}

// Service computes the summary on every call.
type Service struct {
	repo   Repository
	images ImageLinker
}

// NewService builds a Service. images may be nil when no product has an image.
func NewService(repo Repository, images ImageLinker) *Service {
	return &Service{repo: repo, images: images}
}

// Summary runs the aggregate queries concurrently. Any failure fails the whole summary.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountProducts(ctx)
		out.TotalProducts = n
		return err
	})
	g.Go(func() error {
		list, err := s.repo.LowStockProducts(ctx, LowStockThreshold)
		out.LowStockProducts = list
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountOrders(ctx)
		out.TotalOrders = n
		return err
	})
	g.Go(func() error {
		list, err := s.repo.RecentOrders(ctx, RecentOrdersLimit)
		out.RecentOrders = list
		return err
	})
	g.Go(func() error {
		sum, err := s.repo.SumOrderTotals(ctx)
		out.TotalRevenue = sum
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if out.LowStockProducts == nil {
		out.LowStockProducts = []products.Product{}
	}
	for i := range out.LowStockProducts {
		p := &out.LowStockProducts[i]
		if p.Image != nil && s.images != nil {
			p.ImageURL = s.images.URL(*p.Image)
		}
	}
	if out.RecentOrders == nil {
		out.RecentOrders = []orders.Order{}
	}
	return out, nil
}
