package categories_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/memstore"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

type harness struct {
	store   *memstore.Store
	service *categories.Service
	router  http.Handler
	sess    *shared.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := view.NewEngine("v1", logger)
	require.NoError(t, err)

	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := shared.NewSessionManager(nil, "test_session", 0, false).Load(seed.Context(), seed)
	require.NoError(t, err)

	store := memstore.New()
	service := categories.NewService(store.Categories())
	handler := categories.NewHandler(logger, service, engine, categories.DefaultRedirects())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/categories", handler.MountRoutes)
	return &harness{store: store, service: service, router: r, sess: sess}
}

func (h *harness) do(method, target string, values url.Values) (*httptest.ResponseRecorder, view.Page) {
	var body io.Reader
	if values != nil {
		body = strings.NewReader(values.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set(view.HeaderInertia, "true")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	var page view.Page
	if strings.Contains(rec.Header().Get("Content-Type"), "json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &page)
	}
	return rec, page
}

func path(id int64) string {
	return "/categories/" + strconv.FormatInt(id, 10)
}

func TestStoreAndIndex(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do(http.MethodPost, "/categories", url.Values{"name": {"Mugs"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/categories", rec.Header().Get("Location"))

	rec, page := h.do(http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Categories/Index", page.Component)
	list := page.Props["categories"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Mugs", list[0].(map[string]any)["name"])
	assert.Equal(t, map[string]any{"success": "Category created."}, page.Props["flash"])
}

func TestStoreValidation(t *testing.T) {
	h := newHarness(t)

	rec, page := h.do(http.MethodPost, "/categories", url.Values{"name": {strings.Repeat("x", 256)}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Categories/Create", page.Component)
	errs := page.Props["errors"].(map[string]any)
	assert.Equal(t, "The name field must not be greater than 255 characters.", errs["name"])

	rec, page = h.do(http.MethodPost, "/categories", url.Values{"name": {""}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs = page.Props["errors"].(map[string]any)
	assert.Equal(t, "The name field is required.", errs["name"])
}

func TestUpdateRenames(t *testing.T) {
	h := newHarness(t)
	category, err := h.service.Create(context.Background(), categories.Form{Name: "Mugs"})
	require.NoError(t, err)

	rec, _ := h.do(http.MethodPut, path(category.ID), url.Values{"name": {"Cups"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	got, err := h.service.Get(context.Background(), category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cups", got.Name)

	rec, _ = h.do(http.MethodPatch, "/categories/404", url.Values{"name": {"Cups"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShowListsProducts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	category, err := h.service.Create(ctx, categories.Form{Name: "Mugs"})
	require.NoError(t, err)
	_, err = h.store.Products().Create(ctx, products.Record{Name: "Blue mug", Price: 3, Quantity: 1, CategoryID: category.ID})
	require.NoError(t, err)

	rec, page := h.do(http.MethodGet, path(category.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Categories/Show", page.Component)
	assert.Len(t, page.Props["products"].([]any), 1)
	assert.Equal(t, float64(1), page.Props["category"].(map[string]any)["products_count"])
}

func TestDestroyInUseKeepsCategory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	category, err := h.service.Create(ctx, categories.Form{Name: "Mugs"})
	require.NoError(t, err)
	product, err := h.store.Products().Create(ctx, products.Record{Name: "Blue mug", Price: 3, Quantity: 1, CategoryID: category.ID})
	require.NoError(t, err)

	rec, _ := h.do(http.MethodDelete, path(category.ID), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	msg := h.sess.PopFlash()
	require.NotNil(t, msg)
	assert.Equal(t, shared.FlashError, msg.Kind)

	_, err = h.service.Get(ctx, category.ID)
	require.NoError(t, err)
	require.ErrorIs(t, h.service.Delete(ctx, category.ID), categories.ErrInUse)

	require.NoError(t, h.store.Products().Delete(ctx, product.ID))
	rec, _ = h.do(http.MethodDelete, path(category.ID), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	_, err = h.service.Get(ctx, category.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
