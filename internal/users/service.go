package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Service handles user business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Exists reports whether a user id resolves.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Register hashes password and creates the account.
func (s *Service) Register(ctx context.Context, name, email, password string, verified bool) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	return s.repo.Create(ctx, NewUser{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Verified:     verified,
	})
}

// EmailTaken reports whether email belongs to another account than id.
func (s *Service) EmailTaken(ctx context.Context, email string, id int64) (bool, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != id, nil
}

// UpdateProfile persists the profile; a changed e-mail needs verifying again.
func (s *Service) UpdateProfile(ctx context.Context, user *User, input ProfileUpdate) error {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	changed := !strings.EqualFold(user.Email, input.Email)
	return s.repo.UpdateProfile(ctx, user.ID, input, changed)
}

// CheckPassword compares password with the stored hash.
func (s *Service) CheckPassword(user *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// Delete removes the account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
