package orders

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/validation"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// Redirects configures where each mutation sends the client.
type Redirects struct {
	Store        view.Target
	Update       view.Target
	Destroy      view.Target
	UpdateStatus view.Target
}

// DefaultRedirects sends mutations to the order index and status changes back.
func DefaultRedirects() Redirects {
	return Redirects{
		Store:        view.To("/orders"),
		Update:       view.To("/orders"),
		Destroy:      view.To("/orders"),
		UpdateStatus: view.Back("/orders"),
	}
}

// Handler serves the order resource routes.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	views     *view.Engine
	redirects Redirects
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, views *view.Engine, redirects Redirects) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, views: views, redirects: redirects}
}

// MountRoutes registers the resource routes and the status transition.
func (h *Handler) MountRoutes(r chi.Router) {
	httpx.MountResource(r, h)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// Index lists orders with the status choices.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	statuses, err := h.service.Statuses(r.Context())
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	if list == nil {
		list = []Order{}
	}
	if statuses == nil {
		statuses = []Status{}
	}
	h.views.Render(w, r, "Orders/Index", view.Props{"orders": list, "statuses": statuses})
}

// Create shows the empty form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, "Orders/Create", view.Props{})
}

// Store creates an order from the allowlisted fields.
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	req := CreateOrderRequest{
		UserID: strings.TrimSpace(r.PostFormValue("user_id")),
		Total:  strings.TrimSpace(r.PostFormValue("total")),
	}
	if _, err := h.service.Create(r.Context(), req); err != nil {
		h.invalid(w, r, err, "Orders/Create", req, nil)
		return
	}
	view.RedirectWithFlash(w, r, h.redirects.Store, shared.FlashSuccess, "Order created.")
}

// Show displays an order with its items.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}
	h.views.Render(w, r, "Orders/Show", view.Props{"order": order})
}

// Edit shows the form for an existing order.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}
	h.views.Render(w, r, "Orders/Edit", view.Props{"order": order})
}

// Update stores user and total.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}
	req := UpdateOrderRequest{
		UserID: strings.TrimSpace(r.PostFormValue("user_id")),
		Total:  strings.TrimSpace(r.PostFormValue("total")),
	}
	if err := h.service.Update(r.Context(), order.ID, req); err != nil {
		h.invalid(w, r, err, "Orders/Edit", req, order)
		return
	}
	view.RedirectWithFlash(w, r, h.redirects.Update, shared.FlashSuccess, "Order updated.")
}

// Destroy deletes an order.
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.views.Error(w, r, err)
		return
	}
	view.RedirectWithFlash(w, r, h.redirects.Destroy, shared.FlashSuccess, "Order deleted.")
}

// UpdateStatus moves an order to another status and returns to the referring page.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	req := UpdateStatusRequest{StatusID: r.PostFormValue("status_id")}
	if err := h.service.UpdateStatus(r.Context(), id, req); err != nil {
		if errs := validation.FromError(err); errs != nil {
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: shared.FlashError, Message: errs.Error()})
			}
			view.RedirectWithErrors(w, r, h.redirects.UpdateStatus, errs)
			return
		}
		h.views.Error(w, r, err)
		return
	}
	view.RedirectWithFlash(w, r, h.redirects.UpdateStatus, shared.FlashSuccess, "Order status updated.")
}

func (h *Handler) invalid(w http.ResponseWriter, r *http.Request, err error, component string, old any, order *Order) {
	errs := validation.FromError(err)
	if errs == nil {
		h.views.Error(w, r, err)
		return
	}
	props := view.Props{"errors": errs, "old": old}
	if order != nil {
		props["order"] = order
	}
	h.views.RenderStatus(w, r, http.StatusUnprocessableEntity, component, props)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Order, bool) {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		h.views.Error(w, r, err)
		return nil, false
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.views.Error(w, r, err)
		return nil, false
	}
	return order, true
}
