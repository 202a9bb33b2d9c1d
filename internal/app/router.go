package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/dashboard"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/orders"
	"github.com/odyssey-erp/backoffice/internal/profile"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/storage"
	"github.com/odyssey-erp/backoffice/internal/view"
	"github.com/odyssey-erp/backoffice/jobs"
	"github.com/odyssey-erp/backoffice/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Views             *view.Engine
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	AuthMiddleware    auth.Middleware
	AuthHandler       *auth.Handler
	ProfileHandler    *profile.Handler
	DashboardHandler  *dashboard.Handler
	CategoriesHandler *categories.Handler
	ProductsHandler   *products.Handler
	OrdersHandler     *orders.Handler
	JobHandler        *jobs.Handler
	Disk              *storage.Disk
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with back office defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	mwConfig := MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Views:          params.Views,
		Metrics:        params.Metrics,
	}
	for _, mw := range BaseStack(mwConfig) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}
	if params.Disk != nil {
		prefix := "/storage"
		if params.Config != nil {
			prefix = params.Config.StorageURLPrefix
		}
		r.Handle(prefix+"/*", http.StripPrefix(prefix, params.Disk.Handler()))
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(mwConfig) {
			r.Use(mw)
		}
		r.Use(params.AuthMiddleware.LoadUser)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			view.Redirect(w, r, view.To("/shop"))
		})
		r.Get("/shop", params.ProductsHandler.Shop)
		params.AuthHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireUser)
			r.Route("/profile", params.ProfileHandler.MountRoutes)
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
			r.Route("/products", params.ProductsHandler.MountRoutes)
			r.Route("/orders", params.OrdersHandler.MountRoutes)
			r.With(params.AuthMiddleware.RequireVerified).Route("/dashboard", params.DashboardHandler.MountRoutes)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			params.Views.Error(w, r, shared.ErrNotFound)
		})
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
