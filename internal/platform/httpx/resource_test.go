package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

type recordingResource struct{ calls []string }

func (rr *recordingResource) record(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rr.calls = append(rr.calls, name+":"+id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (rr *recordingResource) Index(w http.ResponseWriter, r *http.Request)   { rr.record("index")(w, r) }
func (rr *recordingResource) Create(w http.ResponseWriter, r *http.Request)  { rr.record("create")(w, r) }
func (rr *recordingResource) Store(w http.ResponseWriter, r *http.Request)   { rr.record("store")(w, r) }
func (rr *recordingResource) Show(w http.ResponseWriter, r *http.Request)    { rr.record("show")(w, r) }
func (rr *recordingResource) Edit(w http.ResponseWriter, r *http.Request)    { rr.record("edit")(w, r) }
func (rr *recordingResource) Update(w http.ResponseWriter, r *http.Request)  { rr.record("update")(w, r) }
func (rr *recordingResource) Destroy(w http.ResponseWriter, r *http.Request) { rr.record("destroy")(w, r) }

func TestMountResourceRoutes(t *testing.T) {
	res := &recordingResource{}
	router := chi.NewRouter()
	router.Route("/products", func(r chi.Router) { MountResource(r, res) })

	requests := []struct{ method, path string }{
		{http.MethodGet, "/products"},
		{http.MethodGet, "/products/create"},
		{http.MethodPost, "/products"},
		{http.MethodGet, "/products/7"},
		{http.MethodGet, "/products/7/edit"},
		{http.MethodPut, "/products/7"},
		{http.MethodPatch, "/products/7"},
		{http.MethodDelete, "/products/7"},
	}
	for _, req := range requests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(req.method, req.path, nil))
		require.Equal(t, http.StatusNoContent, rec.Code, "%s %s", req.method, req.path)
	}

	require.Equal(t, []string{
		"index:", "create:", "store:", "show:7", "edit:7", "update:7", "update:7", "destroy:7",
	}, res.calls)
}

func TestParseIDRejectsNonPositive(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3", ""} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req = req.WithContext(contextWithRoute(req, rctx))
		_, err := ParseID(req, "id")
		require.ErrorIs(t, err, shared.ErrNotFound, raw)
	}
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusNotFound, StatusFor(fmt.Errorf("load: %w", shared.ErrNotFound)))
	require.Equal(t, http.StatusUnprocessableEntity, StatusFor(shared.ErrValidation))
	require.Equal(t, 419, StatusFor(shared.ErrCSRFTokenMismatch))
	require.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: relation does not exist"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "relation")
}

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}

func TestParseFormReadsDeleteBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/profile?tab=danger", strings.NewReader("password=secret"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	require.NoError(t, ParseForm(req))
	assert.Equal(t, "secret", req.PostFormValue("password"))
	assert.Equal(t, "danger", req.FormValue("tab"))
}
