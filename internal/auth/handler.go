package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/validation"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	views          *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validation.Validator
	home           string
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, views *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		views:          views,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validation.New(),
		home:           "/dashboard",
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if UserFromContext(r.Context()) != nil {
		view.Redirect(w, r, view.To(h.home))
		return
	}
	h.views.Render(w, r, "Auth/Login", view.Props{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.Error(w, r, err)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	errs := h.validator.Struct(form)
	if errs == nil {
		user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err == nil {
			target := h.home
			if sess != nil {
				sess.SetUser(strconv.FormatInt(user.ID, 10))
				h.csrfManager.Rotate(sess)
				if intended := sess.Get(IntendedURLKey); strings.HasPrefix(intended, "/") && !strings.HasPrefix(intended, "//") {
					target = intended
				}
				sess.Delete(IntendedURLKey)
			} else {
				h.logger.Error("session missing during login")
			}
			view.Redirect(w, r, view.To(target))
			return
		}
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.views.Error(w, r, err)
			return
		}
		errs = validation.Errors{"email": "These credentials do not match our records."}
	}

	h.views.RenderStatus(w, r, http.StatusUnprocessableEntity, "Auth/Login", view.Props{
		"errors": errs,
		"old":    map[string]string{"email": form.Email},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessionManager.Destroy(sess)
	}
	view.Redirect(w, r, view.To("/"))
}
