package products

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/backoffice/internal/storage"
	"github.com/odyssey-erp/backoffice/internal/validation"
)

// CategoryChecker resolves category references.
type CategoryChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ImageStore persists product images.
type ImageStore interface {
	Store(ctx context.Context, area string, up *storage.Upload) (string, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// Service applies product rules and manages images.
type Service struct {
	repo       Repository
	categories CategoryChecker
	images     ImageStore
	validator  *validation.Validator
	logger     *slog.Logger
}

// NewService builds a Service.
func NewService(repo Repository, categories CategoryChecker, images ImageStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		categories: categories,
		images:     images,
		validator:  validation.New(),
		logger:     logger,
	}
}

// List returns products matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range list {
		s.decorate(&list[i])
	}
	return list, nil
}

// Get returns a product.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decorate(product)
	return product, nil
}

// Create validates the form, stores the image if any and inserts the product.
func (s *Service) Create(ctx context.Context, form Form) (*Product, error) {
	rec, err := s.validate(ctx, form)
	if err != nil {
		return nil, err
	}
	if form.Image != nil {
		path, err := s.images.Store(ctx, ImageArea, form.Image)
		if err != nil {
			return nil, fmt.Errorf("products: store image: %w", err)
		}
		rec.Image = &path
	}
	product, err := s.repo.Create(ctx, rec)
	if err != nil {
		if rec.Image != nil {
			s.discard(ctx, *rec.Image)
		}
		return nil, err
	}
	s.decorate(product)
	return product, nil
}

// Update validates the form and overwrites the product. A new image replaces the old one.
func (s *Service) Update(ctx context.Context, id int64, form Form) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	rec, err := s.validate(ctx, form)
	if err != nil {
		return err
	}
	rec.Image = current.Image
	if form.Image != nil {
		if current.Image != nil && *current.Image != "" {
			s.discard(ctx, *current.Image)
		}
		path, err := s.images.Store(ctx, ImageArea, form.Image)
		if err != nil {
			return fmt.Errorf("products: store image: %w", err)
		}
		rec.Image = &path
	}
	return s.repo.Update(ctx, id, rec)
}

// Delete removes the product, then its image.
func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if current.Image != nil && *current.Image != "" {
		s.discard(ctx, *current.Image)
	}
	return nil
}

func (s *Service) discard(ctx context.Context, path string) {
	if err := s.images.Delete(ctx, path); err != nil {
		s.logger.Warn("delete product image", slog.String("path", path), slog.Any("error", err))
	}
}

func (s *Service) decorate(p *Product) {
	if p.Image != nil {
		p.ImageURL = s.images.URL(*p.Image)
	}
}
