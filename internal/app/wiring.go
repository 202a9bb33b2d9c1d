package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/dashboard"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/orders"
	"github.com/odyssey-erp/backoffice/internal/profile"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/storage"
	"github.com/odyssey-erp/backoffice/internal/users"
	"github.com/odyssey-erp/backoffice/internal/view"
	"github.com/odyssey-erp/backoffice/jobs"
)

// Dependencies are the long-lived resources the HTTP layer is built from.
type Dependencies struct {
	Config  *Config
	Logger  *slog.Logger
	Redis   *redis.Client
	Stores  *Stores
	Disk    *storage.Disk
	Metrics *observability.Metrics
	// Notifier receives order status changes; nil disables notifications.
	Notifier orders.StatusNotifier
	// Queues backs /jobs/health; nil leaves the route unmounted.
	Queues jobs.QueueInspector
}

// NewHandler builds services and handlers and returns the root router.
func NewHandler(deps Dependencies) (http.Handler, error) {
	cfg, logger := deps.Config, deps.Logger
	if cfg == nil || deps.Stores == nil || deps.Disk == nil || deps.Redis == nil {
		return nil, fmt.Errorf("app: incomplete dependencies")
	}
	if logger == nil {
		logger = slog.Default()
	}

	views, err := view.NewEngine(cfg.AppAssetVersion, logger)
	if err != nil {
		return nil, err
	}
	views.Share(auth.SharedProps)

	sessions := shared.NewSessionManager(deps.Redis, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrf := shared.NewCSRFManager(cfg.CSRFSecret)
	stores := deps.Stores

	authService := auth.NewService(stores.Users)
	accounts := users.NewService(stores.Users)
	categoryService := categories.NewService(stores.Categories)
	productService := products.NewService(stores.Products, stores.Categories, deps.Disk, logger)
	orderService := orders.NewService(stores.Orders, stores.Users, deps.Notifier, logger)

	var jobHandler *jobs.Handler
	if deps.Queues != nil {
		jobHandler = jobs.NewHandler(deps.Queues, logger)
	}

	return NewRouter(RouterParams{
		Logger:            logger,
		Config:            cfg,
		Views:             views,
		SessionManager:    sessions,
		CSRFManager:       csrf,
		AuthMiddleware:    auth.Middleware{Service: authService, Sessions: sessions, Logger: logger},
		AuthHandler:       auth.NewHandler(logger, authService, views, sessions, csrf),
		ProfileHandler:    profile.NewHandler(logger, accounts, views, sessions),
		DashboardHandler:  dashboard.NewHandler(dashboard.NewService(stores.Dashboard, deps.Disk), views),
		CategoriesHandler: categories.NewHandler(logger, categoryService, views, categories.DefaultRedirects()),
		ProductsHandler:   products.NewHandler(logger, productService, stores.Categories, views, products.DefaultRedirects()),
		OrdersHandler:     orders.NewHandler(logger, orderService, views, orders.DefaultRedirects()),
		JobHandler:        jobHandler,
		Disk:              deps.Disk,
		Metrics:           deps.Metrics,
	}), nil
}
