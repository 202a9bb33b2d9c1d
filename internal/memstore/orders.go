package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/odyssey-erp/backoffice/internal/orders"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/users"
)

// OrderRepo implements orders.Repository.
type OrderRepo struct{ s *Store }

var _ orders.Repository = (*OrderRepo)(nil)

// orderLocked must be called with mu held.
func (s *Store) orderLocked(row orderRow, withItems bool) orders.Order {
	o := orders.Order{
		ID:        row.id,
		UserID:    row.rec.UserID,
		Total:     row.rec.Total,
		StatusID:  row.rec.StatusID,
		Items:     []orders.Item{},
		CreatedAt: row.createdAt,
		UpdatedAt: row.updatedAt,
	}
	if u, ok := s.users[row.rec.UserID]; ok {
		summary := users.Summary{ID: u.ID, Name: u.Name, Email: u.Email}
		o.User = &summary
	}
	if st, ok := s.statusLocked(row.rec.StatusID); ok {
		o.Status = &st
	}
	if withItems {
		for _, item := range s.items {
			if item.orderID != row.id {
				continue
			}
			out := orders.Item{ID: item.id, OrderID: item.orderID, Quantity: item.quantity, Price: item.price}
			if item.productID != nil {
				pid := *item.productID
				out.ProductID = &pid
				if p, ok := s.products[pid]; ok {
					out.Product = &orders.ProductRef{ID: pid, Name: p.rec.Name}
				}
			}
			o.Items = append(o.Items, out)
		}
		sort.Slice(o.Items, func(i, j int) bool { return o.Items[i].ID < o.Items[j].ID })
	}
	return o
}

func (s *Store) statusLocked(id int64) (orders.Status, bool) {
	for _, st := range s.statuses {
		if st.ID == id {
			return st, true
		}
	}
	return orders.Status{}, false
}

// deleteOrder removes an order and its items; must be called with mu held.
func (s *Store) deleteOrder(id int64) {
	delete(s.orders, id)
	for itemID, item := range s.items {
		if item.orderID == id {
			delete(s.items, itemID)
		}
	}
}

// List returns every order, newest first.
func (r *OrderRepo) List(_ context.Context) ([]orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]orders.Order, 0, len(r.s.orders))
	for _, row := range r.s.orders {
		out = append(out, r.s.orderLocked(row, true))
	}
	newestFirst(out, func(o orders.Order) (int64, int64) { return o.CreatedAt.UnixNano(), o.ID })
	return out, nil
}

// Get loads an order with user, status and items.
func (r *OrderRepo) Get(_ context.Context, id int64) (*orders.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.orders[id]
	if !ok {
		return nil, fmt.Errorf("orders: get %d: %w", id, shared.ErrNotFound)
	}
	o := r.s.orderLocked(row, true)
	return &o, nil
}

// Create inserts an order. User and status must exist.
func (r *OrderRepo) Create(_ context.Context, rec orders.Record) (*orders.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkRefs(rec.UserID, rec.StatusID); err != nil {
		return nil, fmt.Errorf("orders: insert: %w", err)
	}
	now := r.s.now()
	row := orderRow{id: r.s.next("orders"), rec: rec, createdAt: now, updatedAt: now}
	r.s.orders[row.id] = row
	o := r.s.orderLocked(row, true)
	return &o, nil
}

func (r *OrderRepo) checkRefs(userID, statusID int64) error {
	if _, ok := r.s.users[userID]; !ok {
		return fmt.Errorf("user %d: %w", userID, shared.ErrConflict)
	}
	if _, ok := r.s.statusLocked(statusID); !ok {
		return fmt.Errorf("status %d: %w", statusID, shared.ErrConflict)
	}
	return nil
}

// Update stores user and total.
func (r *OrderRepo) Update(_ context.Context, id int64, changes orders.Changes) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.orders[id]
	if !ok {
		return fmt.Errorf("orders: update %d: %w", id, shared.ErrNotFound)
	}
	if _, ok := r.s.users[changes.UserID]; !ok {
		return fmt.Errorf("orders: update: user %d: %w", changes.UserID, shared.ErrConflict)
	}
	row.rec.UserID = changes.UserID
	row.rec.Total = changes.Total
	row.updatedAt = r.s.now()
	r.s.orders[id] = row
	return nil
}

// UpdateStatus sets the status of an order.
func (r *OrderRepo) UpdateStatus(_ context.Context, id, statusID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.orders[id]
	if !ok {
		return fmt.Errorf("orders: update status %d: %w", id, shared.ErrNotFound)
	}
	if _, ok := r.s.statusLocked(statusID); !ok {
		return fmt.Errorf("orders: update status: status %d: %w", statusID, shared.ErrConflict)
	}
	row.rec.StatusID = statusID
	row.updatedAt = r.s.now()
	r.s.orders[id] = row
	return nil
}

// Delete removes an order and its items.
func (r *OrderRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[id]; !ok {
		return fmt.Errorf("orders: delete %d: %w", id, shared.ErrNotFound)
	}
	r.s.deleteOrder(id)
	return nil
}

// Statuses returns all statuses by id.
func (r *OrderRepo) Statuses(_ context.Context) ([]orders.Status, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]orders.Status(nil), r.s.statuses...), nil
}

// Status loads one status.
func (r *OrderRepo) Status(_ context.Context, id int64) (*orders.Status, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.statusLocked(id)
	if !ok {
		return nil, fmt.Errorf("orders: status %d: %w", id, shared.ErrNotFound)
	}
	return &st, nil
}

// DefaultStatus returns the status with the lowest id.
func (r *OrderRepo) DefaultStatus(_ context.Context) (*orders.Status, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if len(r.s.statuses) == 0 {
		return nil, fmt.Errorf("orders: no statuses seeded: %w", shared.ErrNotFound)
	}
	st := r.s.statuses[0]
	return &st, nil
}

// AddItem appends a line to an order.
func (r *OrderRepo) AddItem(_ context.Context, orderID, productID int64, quantity int, price float64) (*orders.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[orderID]; !ok {
		return nil, fmt.Errorf("orders: add item: order %d: %w", orderID, shared.ErrNotFound)
	}
	if _, ok := r.s.products[productID]; !ok {
		return nil, fmt.Errorf("orders: add item: product %d: %w", productID, shared.ErrConflict)
	}
	pid := productID
	row := itemRow{id: r.s.next("order_items"), orderID: orderID, productID: &pid, quantity: quantity, price: price}
	r.s.items[row.id] = row
	return &orders.Item{ID: row.id, OrderID: orderID, ProductID: &pid, Quantity: quantity, Price: price}, nil
}
