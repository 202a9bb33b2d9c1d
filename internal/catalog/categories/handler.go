package categories

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/validation"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// Redirects configures where each mutation sends the client.
type Redirects struct {
	Store   view.Target
	Update  view.Target
	Destroy view.Target
}

// DefaultRedirects returns the category index for every mutation.
func DefaultRedirects() Redirects {
	return Redirects{
		Store:   view.To("/categories"),
		Update:  view.To("/categories"),
		Destroy: view.To("/categories"),
	}
}

// Handler serves the category resource routes.
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

// MountRoutes registers the resource routes.
func (h *Handler) MountRoutes(r chi.Router) {
	httpx.MountResource(r, h)
}

// Index lists categories.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	h.views.Render(w, r, "Categories/Index", view.Props{"categories": orEmpty(list)})
}

// Create shows the empty form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, "Categories/Create", view.Props{})
}

// Store creates a category.
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	form := Form{Name: r.PostFormValue("name")}
	if _, err := h.service.Create(r.Context(), form); err != nil {
		if errs := validation.FromError(err); errs != nil {
			h.views.RenderStatus(w, r, http.StatusUnprocessableEntity, "Categories/Create", view.Props{
				"errors": errs,
				"old":    form,
			})
			return
		}
		h.views.Error(w, r, err)
		return
	}
	view.RedirectWithFlash(w, r, h.redirects.Store, shared.FlashSuccess, "Category created.")
}

// Show displays a category and its products.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	category, ok := h.load(w, r)
	if !ok {
		return
	}
	products, err := h.service.Products(r.Context(), category.ID)
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	if products == nil {
		products = []ProductSummary{}
	}
	h.views.Render(w, r, "Categories/Show", view.Props{"category": category, "products": products})
}

// Edit shows the form for an existing category.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	category, ok := h.load(w, r)
	if !ok {
		return
	}
	h.views.Render(w, r, "Categories/Edit", view.Props{"category": category})
}

// Update renames a category.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	category, ok := h.load(w, r)
	if !ok {
		return
	}
	form := Form{Name: r.PostFormValue("name")}
	if err := h.service.Update(r.Context(), category.ID, form); err != nil {
		if errs := validation.FromError(err); errs != nil {
			h.views.RenderStatus(w, r, http.StatusUnprocessableEntity, "Categories/Edit", view.Props{
				"category": category,
				"errors":   errs,
				"old":      form,
			})
			return
		}
		h.views.Error(w, r, err)
		return
	}
	view.RedirectWithFlash(w, r, h.redirects.Update, shared.FlashSuccess, "Category updated.")
}

// Destroy deletes a category that has no products.
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrInUse) {
			view.RedirectWithFlash(w, r, h.redirects.Destroy, shared.FlashError, "This category still has products and cannot be deleted.")
			return
		}
		h.views.Error(w, r, err)
		return
	}
	view.RedirectWithFlash(w, r, h.redirects.Destroy, shared.FlashSuccess, "Category deleted.")
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Category, bool) {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		h.views.Error(w, r, err)
		return nil, false
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.views.Error(w, r, err)
		return nil, false
	}
	return category, true
}

func orEmpty(list []Category) []Category {
	if list == nil {
		return []Category{}
	}
	return list
}
