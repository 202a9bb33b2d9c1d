package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// IntendedURLKey remembers where an anonymous visitor was heading.
const IntendedURLKey = "url.intended"

// Middleware guards routes that need a signed-in user.
type Middleware struct {
	Service  *Service
	Sessions *shared.SessionManager
	Logger   *slog.Logger
}

// LoadUser attaches the session user to the request context when there is one.
func (m Middleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := m.Service.Current(r.Context(), sess)
		switch {
		case err == nil:
			r = r.WithContext(ContextWithUser(r.Context(), user))
		case errors.Is(err, shared.ErrNotFound):
			// The account is gone.
			sess.SetUser("")
		default:
			if m.Logger != nil {
				m.Logger.Error("load session user", slog.Any("error", err))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser sends anonymous visitors to the login page.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		if sess := shared.SessionFromContext(r.Context()); sess != nil && r.Method == http.MethodGet {
			sess.Set(IntendedURLKey, r.URL.RequestURI())
		}
		view.Redirect(w, r, view.To("/login"))
	})
}

// RequireVerified sends users with an unconfirmed e-mail to their profile.
func (m Middleware) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			view.Redirect(w, r, view.To("/login"))
			return
		}
		if !user.Verified() {
			view.RedirectWithFlash(w, r, view.To("/profile"), shared.FlashWarning, "Please verify your email address to access the dashboard.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
