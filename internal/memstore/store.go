// Package memstore keeps every back office table in memory. It backs
// STORE_DRIVER=memory and the handler tests.
package memstore

import (
	"sync"
	"time"

	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/orders"
	"github.com/odyssey-erp/backoffice/internal/users"
)

// DefaultStatuses mirrors the seeded order_statuses table.
var DefaultStatuses = []string{"Pending", "Processing", "Shipped", "Delivered", "Cancelled"}

type categoryRow struct {
	id        int64
	name      string
	createdAt time.Time
	updatedAt time.Time
}

type productRow struct {
	id        int64
	rec       products.Record
	createdAt time.Time
	updatedAt time.Time
}

type orderRow struct {
	id        int64
	rec       orders.Record
	createdAt time.Time
	updatedAt time.Time
}

type itemRow struct {
	id        int64
	orderID   int64
	productID *int64
	quantity  int
	price     float64
}

// Store holds all tables behind one lock so joins and cascades stay consistent.
type Store struct {
	mu   sync.RWMutex
	last time.Time
	seq  map[string]int64

	users      map[int64]users.User
	categories map[int64]categoryRow
	products   map[int64]productRow
	statuses   []orders.Status
	orders     map[int64]orderRow
	items      map[int64]itemRow
}

// New returns an empty store with the default order statuses.
func New() *Store {
	s := &Store{
		seq:        map[string]int64{},
		users:      map[int64]users.User{},
		categories: map[int64]categoryRow{},
		products:   map[int64]productRow{},
		orders:     map[int64]orderRow{},
		items:      map[int64]itemRow{},
	}
	for _, label := range DefaultStatuses {
		s.statuses = append(s.statuses, orders.Status{ID: s.next("order_statuses"), Label: label})
	}
	return s
}

// Users returns the users repository view.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Categories returns the categories repository view.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Products returns the products repository view.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Orders returns the orders repository view.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

// Dashboard returns the aggregate queries view.
func (s *Store) Dashboard() *DashboardRepo { return &DashboardRepo{s: s} }

// next must be called with mu held.
func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// now returns strictly increasing timestamps; must be called with mu held.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}
