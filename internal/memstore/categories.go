package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// CategoryRepo implements categories.Repository.
type CategoryRepo struct{ s *Store }

var _ categories.Repository = (*CategoryRepo)(nil)

// categoryLocked must be called with mu held.
func (s *Store) categoryLocked(row categoryRow) categories.Category {
	count := 0
	for _, p := range s.products {
		if p.rec.CategoryID == row.id {
			count++
		}
	}
	return categories.Category{
		ID:            row.id,
		Name:          row.name,
		ProductsCount: count,
		CreatedAt:     row.createdAt,
		UpdatedAt:     row.updatedAt,
	}
}

// List returns categories ordered by name.
func (r *CategoryRepo) List(_ context.Context) ([]categories.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]categories.Category, 0, len(r.s.categories))
	for _, row := range r.s.categories {
		out = append(out, r.s.categoryLocked(row))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Get loads a category.
func (r *CategoryRepo) Get(_ context.Context, id int64) (*categories.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.categories[id]
	if !ok {
		return nil, fmt.Errorf("categories: get %d: %w", id, shared.ErrNotFound)
	}
	c := r.s.categoryLocked(row)
	return &c, nil
}

// Exists reports whether id resolves.
func (r *CategoryRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.categories[id]
	return ok, nil
}

// Create inserts a category.
func (r *CategoryRepo) Create(_ context.Context, input categories.Input) (*categories.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	row := categoryRow{id: r.s.next("categories"), name: input.Name, createdAt: now, updatedAt: now}
	r.s.categories[row.id] = row
	c := r.s.categoryLocked(row)
	return &c, nil
}

// Update renames a category.
func (r *CategoryRepo) Update(_ context.Context, id int64, input categories.Input) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.categories[id]
	if !ok {
		return fmt.Errorf("categories: update %d: %w", id, shared.ErrNotFound)
	}
	row.name = input.Name
	row.updatedAt = r.s.now()
	r.s.categories[id] = row
	return nil
}

// Delete removes a category unless products reference it.
func (r *CategoryRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return fmt.Errorf("categories: delete %d: %w", id, shared.ErrNotFound)
	}
	for _, p := range r.s.products {
		if p.rec.CategoryID == id {
			return fmt.Errorf("categories: delete %d: %w", id, categories.ErrInUse)
		}
	}
	delete(r.s.categories, id)
	return nil
}

// Products lists the products of a category by name.
func (r *CategoryRepo) Products(_ context.Context, id int64) ([]categories.ProductSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []categories.ProductSummary
	for _, p := range r.s.products {
		if p.rec.CategoryID != id {
			continue
		}
		out = append(out, categories.ProductSummary{ID: p.id, Name: p.rec.Name, Price: p.rec.Price, Quantity: p.rec.Quantity})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
