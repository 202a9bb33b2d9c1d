package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/view"
)

// Handler renders the Dashboard page.
type Handler struct {
	service *Service
	views   *view.Engine
}

// NewHandler builds a Handler.
func NewHandler(service *Service, views *view.Engine) *Handler {
	return &Handler{service: service, views: views}
}

// MountRoutes registers the dashboard route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Index)
}

// Index renders the aggregate metrics.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	h.views.Render(w, r, "Dashboard", view.Props{
		"totalProducts":         summary.TotalProducts,
		"lowStockProducts":      summary.LowStockProducts,
		"totalOrders":           summary.TotalOrders,
		"recentOrders":          summary.RecentOrders,
		"totalRevenue":          summary.TotalRevenue,
		"totalRevenueFormatted": view.FormatMoney(summary.TotalRevenue),
	})
}
