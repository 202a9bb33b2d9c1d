package auth

import (
	"context"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/users"
	"github.com/odyssey-erp/backoffice/internal/view"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated user.
func ContextWithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user or nil.
func UserFromContext(ctx context.Context) *users.User {
	user, _ := ctx.Value(userContextKey{}).(*users.User)
	return user
}

// SharedProps exposes auth.user to every page.
func SharedProps(r *http.Request) view.Props {
	var current any
	if user := UserFromContext(r.Context()); user != nil {
		current = user
	}
	return view.Props{"auth": map[string]any{"user": current}}
}
