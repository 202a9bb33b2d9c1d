package categories

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/backoffice/internal/validation"
)

// Service applies category rules on top of the repository.
type Service struct {
	repo      Repository
	validator *validation.Validator
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validation.New()}
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Get returns a category.
func (s *Service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.Get(ctx, id)
}

// Exists reports whether id is a known category.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Products lists the products filed under a category.
func (s *Service) Products(ctx context.Context, id int64) ([]ProductSummary, error) {
	return s.repo.Products(ctx, id)
}

// Create validates and stores a category.
func (s *Service) Create(ctx context.Context, form Form) (*Category, error) {
	input, err := s.validate(form)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, input)
}

// Update validates and renames a category.
func (s *Service) Update(ctx context.Context, id int64, form Form) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	input, err := s.validate(form)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, id, input)
}

// Delete removes a category without products.
func (s *Service) Delete(ctx context.Context, id int64) error {
	category, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if category.ProductsCount > 0 {
		return fmt.Errorf("categories: delete %d: %w", id, ErrInUse)
	}
	return s.repo.Delete(ctx, id)
}
