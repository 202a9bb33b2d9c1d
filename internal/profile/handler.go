// Package profile lets the signed-in user edit or delete their own account.
package profile

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/users"
	"github.com/odyssey-erp/backoffice/internal/validation"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// Accounts is the users service subset used here.
type Accounts interface {
	EmailTaken(ctx context.Context, email string, id int64) (bool, error)
	UpdateProfile(ctx context.Context, user *users.User, input users.ProfileUpdate) error
	CheckPassword(user *users.User, password string) bool
	Delete(ctx context.Context, id int64) error
}

// Handler serves /profile.
type Handler struct {
	logger    *slog.Logger
	accounts  Accounts
	views     *view.Engine
	sessions  *shared.SessionManager
	validator *validation.Validator
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, accounts Accounts, views *view.Engine, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, accounts: accounts, views: views, sessions: sessions, validator: validation.New()}
}

// MountRoutes registers the profile routes. Callers guard them with auth.RequireUser.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Edit)
	r.Patch("/", h.Update)
	r.Delete("/", h.Destroy)
}

type updateForm struct {
	Name  string `form:"name" json:"name" validate:"required,max=255"`
	Email string `form:"email" json:"email" validate:"required,email,max=255"`
}

type deleteForm struct {
	Password string `form:"password" validate:"required"`
}

// Edit shows the profile form.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	h.views.Render(w, r, "Profile/Edit", view.Props{
		"user":            user,
		"mustVerifyEmail": user != nil && !user.Verified(),
	})
}

// Update stores name and e-mail.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	form := updateForm{
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Email: strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))),
	}
	errs := h.validator.Struct(form)
	if errs == nil {
		taken, err := h.accounts.EmailTaken(r.Context(), form.Email, user.ID)
		if err != nil {
			h.views.Error(w, r, err)
			return
		}
		if taken {
			errs = validation.Errors{"email": "The email has already been taken."}
		}
	}
	if errs != nil {
		h.views.RenderStatus(w, r, http.StatusUnprocessableEntity, "Profile/Edit", view.Props{
			"user":   user,
			"errors": errs,
			"old":    form,
		})
		return
	}
	if err := h.accounts.UpdateProfile(r.Context(), user, users.ProfileUpdate{Name: form.Name, Email: form.Email}); err != nil {
		h.views.Error(w, r, err)
		return
	}
	view.RedirectWithFlash(w, r, view.To("/profile"), shared.FlashSuccess, "Profile saved.")
}

// Destroy deletes the account after confirming the password.
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if err := httpx.ParseForm(r); err != nil {
		h.views.Error(w, r, err)
		return
	}
	form := deleteForm{Password: r.PostFormValue("password")}
	errs := h.validator.Struct(form)
	if errs == nil && !h.accounts.CheckPassword(user, form.Password) {
		errs = validation.Errors{"password": "The password is incorrect."}
	}
	if errs != nil {
		h.views.RenderStatus(w, r, http.StatusUnprocessableEntity, "Profile/Edit", view.Props{
			"user":   user,
			"errors": errs,
		})
		return
	}
	if err := h.accounts.Delete(r.Context(), user.ID); err != nil {
		h.views.Error(w, r, err)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess)
	}
	h.logger.Info("account deleted", slog.Int64("user_id", user.ID))
	view.Redirect(w, r, view.To("/"))
}
