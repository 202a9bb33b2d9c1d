package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/validation"
)

// UserDirectory resolves user references.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// StatusNotifier is told about status transitions.
type StatusNotifier interface {
	OrderStatusChanged(ctx context.Context, order *Order) error
}

// Service applies order rules on top of the repository.
type Service struct {
	repo      Repository
	users     UserDirectory
	notifier  StatusNotifier
	validator *validation.Validator
	logger    *slog.Logger
}

// NewService builds a Service. notifier may be nil.
func NewService(repo Repository, users UserDirectory, notifier StatusNotifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, users: users, notifier: notifier, validator: validation.New(), logger: logger}
}

// List returns every order.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// Get returns an order.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// Statuses returns the selectable statuses.
func (s *Service) Statuses(ctx context.Context) ([]Status, error) {
	return s.repo.Statuses(ctx)
}

// Create validates the allowlisted fields and inserts an order in the default status.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	changes, err := s.validateFields(ctx, req.UserID, req.Total, req)
	if err != nil {
		return nil, err
	}
	status, err := s.repo.DefaultStatus(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, Record{UserID: changes.UserID, Total: changes.Total, StatusID: status.ID})
}

// Update validates and stores user and total.
func (s *Service) Update(ctx context.Context, id int64, req UpdateOrderRequest) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	changes, err := s.validateFields(ctx, req.UserID, req.Total, req)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, id, changes)
}

// UpdateStatus moves an order to an existing status and notifies the customer.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	req.StatusID = strings.TrimSpace(req.StatusID)
	errs := s.validator.Struct(req)
	if errs == nil {
		errs = validation.Errors{}
	}
	var statusID int64
	if !errs.Has("status_id") {
		statusID, _ = strconv.ParseInt(req.StatusID, 10, 64)
		if statusID <= 0 {
			errs.Add("status_id", validation.Invalid("status_id"))
		} else if _, err := s.repo.Status(ctx, statusID); err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			errs.Add("status_id", validation.Invalid("status_id"))
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, statusID); err != nil {
		return err
	}
	s.notify(ctx, id)
	return nil
}

// Delete removes an order and its items.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) notify(ctx context.Context, id int64) {
	if s.notifier == nil {
		return
	}
	order, err := s.repo.Get(ctx, id)
	if err == nil {
		err = s.notifier.OrderStatusChanged(ctx, order)
	}
	if err != nil {
		s.logger.Warn("order status notification", slog.Int64("order_id", id), slog.Any("error", err))
	}
}

func (s *Service) validateFields(ctx context.Context, rawUser, rawTotal string, req any) (Changes, error) {
	errs := s.validator.Struct(req)
	if errs == nil {
		errs = validation.Errors{}
	}
	var changes Changes
	if !errs.Has("user_id") {
		id, err := strconv.ParseInt(strings.TrimSpace(rawUser), 10, 64)
		exists := false
		if err == nil && id > 0 {
			if exists, err = s.users.Exists(ctx, id); err != nil {
				return Changes{}, fmt.Errorf("orders: check user: %w", err)
			}
		}
		if !exists {
			errs.Add("user_id", validation.Invalid("user_id"))
		}
		changes.UserID = id
	}
	if !errs.Has("total") {
		total, err := validation.ParseNumber(rawTotal)
		if err != nil || total < 0 {
			errs.Add("total", validation.Invalid("total"))
		}
		changes.Total = total
	}
	if err := errs.Err(); err != nil {
		return Changes{}, err
	}
	return changes, nil
}
