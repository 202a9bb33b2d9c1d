package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Resource is the seven-route handler set mounted by MountResource.
type Resource interface {
	Index(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Store(w http.ResponseWriter, r *http.Request)
	Show(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Destroy(w http.ResponseWriter, r *http.Request)
}

// MountResource registers the standard resource routes keyed by {id}.
func MountResource(r chi.Router, res Resource) {
	r.Get("/", res.Index)
	r.Get("/create", res.Create)
	r.Post("/", res.Store)
	r.Get("/{id}", res.Show)
	r.Get("/{id}/edit", res.Edit)
	r.Put("/{id}", res.Update)
	r.Patch("/{id}", res.Update)
	r.Delete("/{id}", res.Destroy)
}

// ParseID reads a positive integer route parameter. Anything else resolves to ErrNotFound.
func ParseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrNotFound
	}
	return id, nil
}
