package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/users"
)

// UserStore is the subset of the users repository needed by auth.
type UserStore interface {
	Get(ctx context.Context, id int64) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	users UserStore
}

// NewService constructs a new Service.
func NewService(store UserStore) *Service {
	return &Service{users: store}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Current loads the user bound to the session.
func (s *Service) Current(ctx context.Context, sess *shared.Session) (*users.User, error) {
	id, ok := sess.UserID()
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s.users.Get(ctx, id)
}
