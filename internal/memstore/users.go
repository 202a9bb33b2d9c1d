package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/users"
)

// UserRepo implements users.Repository.
type UserRepo struct{ s *Store }

var _ users.Repository = (*UserRepo)(nil)

// Get loads a user by id.
func (r *UserRepo) Get(_ context.Context, id int64) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("users: get %d: %w", id, shared.ErrNotFound)
	}
	return &u, nil
}

// FindByEmail loads a user by case-insensitive e-mail.
func (r *UserRepo) FindByEmail(_ context.Context, email string) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.TrimSpace(email)
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("users: find by email: %w", shared.ErrNotFound)
}

// Exists reports whether id resolves.
func (r *UserRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.users[id]
	return ok, nil
}

// List returns users ordered by name.
func (r *UserRepo) List(_ context.Context) ([]users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]users.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Create inserts a user. E-mails are unique.
func (r *UserRepo) Create(_ context.Context, input users.NewUser) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, input.Email) {
			return nil, fmt.Errorf("users: create: email %q: %w", input.Email, shared.ErrConflict)
		}
	}
	now := r.s.now()
	u := users.User{
		ID:           r.s.next("users"),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Verified {
		verified := now
		u.EmailVerifiedAt = &verified
	}
	r.s.users[u.ID] = u
	return &u, nil
}

// UpdateProfile stores name and e-mail.
func (r *UserRepo) UpdateProfile(_ context.Context, id int64, input users.ProfileUpdate, clearVerification bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return fmt.Errorf("users: update %d: %w", id, shared.ErrNotFound)
	}
	u.Name = input.Name
	u.Email = input.Email
	if clearVerification {
		u.EmailVerifiedAt = nil
	}
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

// Delete removes a user and, like the foreign key, their orders.
func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return fmt.Errorf("users: delete %d: %w", id, shared.ErrNotFound)
	}
	delete(r.s.users, id)
	for orderID, o := range r.s.orders {
		if o.rec.UserID == id {
			r.s.deleteOrder(orderID)
		}
	}
	return nil
}
