package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// ProductRepo implements products.Repository.
type ProductRepo struct{ s *Store }

var _ products.Repository = (*ProductRepo)(nil)

// productLocked must be called with mu held.
func (s *Store) productLocked(row productRow) products.Product {
	p := products.Product{
		ID:          row.id,
		Name:        row.rec.Name,
		Description: cloneString(row.rec.Description),
		Price:       row.rec.Price,
		Quantity:    row.rec.Quantity,
		SKU:         cloneString(row.rec.SKU),
		Image:       cloneString(row.rec.Image),
		CategoryID:  row.rec.CategoryID,
		CreatedAt:   row.createdAt,
		UpdatedAt:   row.updatedAt,
	}
	if c, ok := s.categories[row.rec.CategoryID]; ok {
		p.Category = &categories.Summary{ID: c.id, Name: c.name}
	}
	return p
}

// newestFirst orders rows by creation time, then id, descending.
func newestFirst[T any](list []T, created func(T) (int64, int64)) {
	sort.Slice(list, func(i, j int) bool {
		ti, idi := created(list[i])
		tj, idj := created(list[j])
		if ti == tj {
			return idi > idj
		}
		return ti > tj
	})
}

// List returns products matching filter, newest first.
func (r *ProductRepo) List(_ context.Context, filter products.ListFilter) ([]products.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []products.Product
	for _, row := range r.s.products {
		if filter.CategoryID > 0 && row.rec.CategoryID != filter.CategoryID {
			continue
		}
		if filter.InStock && row.rec.Quantity <= 0 {
			continue
		}
		if term != "" && !matches(row.rec, term) {
			continue
		}
		out = append(out, r.s.productLocked(row))
	}
	newestFirst(out, func(p products.Product) (int64, int64) { return p.CreatedAt.UnixNano(), p.ID })
	return out, nil
}

func matches(rec products.Record, term string) bool {
	if strings.Contains(strings.ToLower(rec.Name), term) {
		return true
	}
	return rec.SKU != nil && strings.Contains(strings.ToLower(*rec.SKU), term)
}

// Get loads a product with its category.
func (r *ProductRepo) Get(_ context.Context, id int64) (*products.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.products[id]
	if !ok {
		return nil, fmt.Errorf("products: get %d: %w", id, shared.ErrNotFound)
	}
	p := r.s.productLocked(row)
	return &p, nil
}

// Create inserts a product. The category must exist.
func (r *ProductRepo) Create(_ context.Context, rec products.Record) (*products.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[rec.CategoryID]; !ok {
		return nil, fmt.Errorf("products: insert: category %d: %w", rec.CategoryID, shared.ErrConflict)
	}
	now := r.s.now()
	row := productRow{id: r.s.next("products"), rec: cloneRecord(rec), createdAt: now, updatedAt: now}
	r.s.products[row.id] = row
	p := r.s.productLocked(row)
	return &p, nil
}

// Update overwrites every persisted field.
func (r *ProductRepo) Update(_ context.Context, id int64, rec products.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.products[id]
	if !ok {
		return fmt.Errorf("products: update %d: %w", id, shared.ErrNotFound)
	}
	if _, ok := r.s.categories[rec.CategoryID]; !ok {
		return fmt.Errorf("products: update: category %d: %w", rec.CategoryID, shared.ErrConflict)
	}
	row.rec = cloneRecord(rec)
	row.updatedAt = r.s.now()
	r.s.products[id] = row
	return nil
}

// Delete removes a product; order items keep a null product.
func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return fmt.Errorf("products: delete %d: %w", id, shared.ErrNotFound)
	}
	delete(r.s.products, id)
	for itemID, item := range r.s.items {
		if item.productID != nil && *item.productID == id {
			item.productID = nil
			r.s.items[itemID] = item
		}
	}
	return nil
}

// ImagePaths returns every referenced image path.
func (r *ProductRepo) ImagePaths(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []string
	for _, row := range r.s.products {
		if row.rec.Image != nil && *row.rec.Image != "" {
			out = append(out, *row.rec.Image)
		}
	}
	sort.Strings(out)
	return out, nil
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneRecord(rec products.Record) products.Record {
	rec.Description = cloneString(rec.Description)
	rec.SKU = cloneString(rec.SKU)
	rec.Image = cloneString(rec.Image)
	return rec
}
