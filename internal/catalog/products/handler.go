package products

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/storage"
	"github.com/odyssey-erp/backoffice/internal/validation"
	"github.com/odyssey-erp/backoffice/internal/view"
)

const maxFormMemory = 8 << 20

// CategoryLister supplies the category choices of the product forms.
type CategoryLister interface {
	List(ctx context.Context) ([]categories.Category, error)
}

// Redirects configures where each mutation sends the client.
type Redirects struct {
	Store   view.Target
	Update  view.Target
	Destroy view.Target
}

// DefaultRedirects returns the product index for every mutation.
func DefaultRedirects() Redirects {
	return Redirects{
		Store:   view.To("/products"),
		Update:  view.To("/products"),
		Destroy: view.To("/products"),
	}
}

// Handler serves the product resource routes.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	categories CategoryLister
	views      *view.Engine
	redirects  Redirects
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, categories CategoryLister, views *view.Engine, redirects Redirects) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, categories: categories, views: views, redirects: redirects}
}

// MountRoutes registers the resource routes.
func (h *Handler) MountRoutes(r chi.Router) {
	httpx.MountResource(r, h)
}

// Index lists products with their category and the category filter choices.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		CategoryID: queryID(r, "category_id"),
		Search:     r.URL.Query().Get("search"),
	}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	cats, err := h.categories.List(r.Context())
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	h.views.Render(w, r, "Products/Index", view.Props{
		"products":   productsOrEmpty(list),
		"categories": categoriesOrEmpty(cats),
		"filters":    map[string]any{"category_id": filter.CategoryID, "search": filter.Search},
	})
}

// Create shows the empty form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	h.views.Render(w, r, "Products/Create", view.Props{"categories": categoriesOrEmpty(cats)})
}

// Store creates a product.
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	form, err := parseForm(r)
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	if _, err := h.service.Create(r.Context(), form); err != nil {
		h.invalid(w, r, err, "Products/Create", form, nil)
		return
	}
	view.RedirectWithFlash(w, r, h.redirects.Store, shared.FlashSuccess, "Product created.")
}

// Show displays a product.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	product, ok := h.load(w, r)
	if !ok {
		return
	}
	h.views.Render(w, r, "Products/Show", view.Props{"product": product})
}

// Edit shows the form for an existing product.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	product, ok := h.load(w, r)
	if !ok {
		return
	}
	cats, err := h.categories.List(r.Context())
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	h.views.Render(w, r, "Products/Edit", view.Props{"product": product, "categories": categoriesOrEmpty(cats)})
}

// Update overwrites a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	product, ok := h.load(w, r)
	if !ok {
		return
	}
	form, err := parseForm(r)
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	if err := h.service.Update(r.Context(), product.ID, form); err != nil {
		h.invalid(w, r, err, "Products/Edit", form, product)
		return
	}
	view.RedirectWithFlash(w, r, h.redirects.Update, shared.FlashSuccess, "Product updated.")
}

// Destroy deletes a product and its image.
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
	view.RedirectWithFlash(w, r, h.redirects.Destroy, shared.FlashSuccess, "Product deleted.")
}

// Shop renders the public landing page of products in stock.
func (h *Handler) Shop(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{InStock: true, CategoryID: queryID(r, "category_id")}
	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	cats, err := h.categories.List(r.Context())
	if err != nil {
		h.views.Error(w, r, err)
		return
	}
	h.views.Render(w, r, "Shop", view.Props{
		"products":   productsOrEmpty(list),
		"categories": categoriesOrEmpty(cats),
		"filters":    map[string]any{"category_id": filter.CategoryID},
	})
}

func (h *Handler) invalid(w http.ResponseWriter, r *http.Request, err error, component string, form Form, product *Product) {
	errs := validation.FromError(err)
	if errs == nil {
		h.views.Error(w, r, err)
		return
	}
	cats, listErr := h.categories.List(r.Context())
	if listErr != nil {
		h.views.Error(w, r, listErr)
		return
	}
	props := view.Props{
		"categories": categoriesOrEmpty(cats),
		"errors":     errs,
		"old":        form,
	}
	if product != nil {
		props["product"] = product
	}
	h.views.RenderStatus(w, r, http.StatusUnprocessableEntity, component, props)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Product, bool) {
	id, err := httpx.ParseID(r, "id")
	if err != nil {
		h.views.Error(w, r, err)
		return nil, false
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.views.Error(w, r, err)
		return nil, false
	}
	return product, true
}

func parseForm(r *http.Request) (Form, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return Form{}, err
	}
	form := Form{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Price:       r.PostFormValue("price"),
		Quantity:    r.PostFormValue("quantity"),
		SKU:         r.PostFormValue("sku"),
		CategoryID:  r.PostFormValue("category_id"),
	}
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image"]; len(files) > 0 && files[0].Size > 0 {
			up, err := storage.ReadUpload(files[0], storage.MaxImageBytes)
			if err != nil {
				return Form{}, err
			}
			form.Image = up
		}
	}
	return form, nil
}

func queryID(r *http.Request, key string) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func productsOrEmpty(list []Product) []Product {
	if list == nil {
		return []Product{}
	}
	return list
}

func categoriesOrEmpty(list []categories.Category) []categories.Category {
	if list == nil {
		return []categories.Category{}
	}
	return list
}
