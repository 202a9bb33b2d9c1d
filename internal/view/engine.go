// Package view bridges handlers to the client-side renderer. Every response is a
// page object: component name, props, url and asset version.
package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/backoffice/web"
)

// Protocol headers exchanged with the client renderer.
const (
	HeaderInertia          = "X-Inertia"
	HeaderVersion          = "X-Inertia-Version"
	HeaderLocation         = "X-Inertia-Location"
	HeaderPartialComponent = "X-Inertia-Partial-Component"
	HeaderPartialData      = "X-Inertia-Partial-Data"
)

// Props is the data handed to a page component.
type Props map[string]any

// Page is the object serialised to the client.
type Page struct {
	Component string `json:"component"`
	Props     Props  `json:"props"`
	URL       string `json:"url"`
	Version   string `json:"version"`
}

// SharedPropsFunc contributes props to every page rendered for r.
type SharedPropsFunc func(r *http.Request) Props

// Engine renders page objects as JSON or inside the HTML shell.
type Engine struct {
	shell   *template.Template
	version string
	shared  []SharedPropsFunc
	logger  *slog.Logger
}

type shellData struct {
	Title    string
	Version  string
	PageJSON string
}

// NewEngine parses the HTML shell from the embedded web templates.
func NewEngine(version string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	funcMap := template.FuncMap{
		"asset": func(path string) string {
			return "/static/" + strings.TrimPrefix(path, "/") + "?v=" + version
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: parse shell: %w", err)
	}
	e := &Engine{shell: tpl, version: version, logger: logger}
	e.Share(sessionProps)
	return e, nil
}

// Version returns the asset version advertised to clients.
func (e *Engine) Version() string {
	return e.version
}

// Share registers a shared props hook. Later hooks override earlier keys.
func (e *Engine) Share(fn SharedPropsFunc) {
	e.shared = append(e.shared, fn)
}

// Render responds with 200 and the given page.
func (e *Engine) Render(w http.ResponseWriter, r *http.Request, component string, props Props) {
	e.RenderStatus(w, r, http.StatusOK, component, props)
}

// RenderStatus responds with the given page and status code.
func (e *Engine) RenderStatus(w http.ResponseWriter, r *http.Request, status int, component string, props Props) {
	page := e.page(r, component, props)

	if r.Header.Get(HeaderInertia) == "true" {
		body, err := json.Marshal(page)
		if err != nil {
			e.fail(w, r, err)
			return
		}
		w.Header().Set(HeaderInertia, "true")
		w.Header().Set("Vary", HeaderInertia)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
		return
	}

	pageJSON, err := json.Marshal(page)
	if err != nil {
		e.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	data := shellData{Title: component, Version: e.version, PageJSON: string(pageJSON)}
	if err := e.shell.ExecuteTemplate(&buf, "app", data); err != nil {
		e.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", HeaderInertia)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (e *Engine) page(r *http.Request, component string, props Props) Page {
	merged := Props{"errors": map[string]string{}}
	for _, fn := range e.shared {
		for k, v := range fn(r) {
			merged[k] = v
		}
	}
	for k, v := range props {
		merged[k] = v
	}

	if only := partialKeys(r, component); only != nil {
		filtered := Props{"errors": merged["errors"]}
		for _, key := range only {
			if v, ok := merged[key]; ok {
				filtered[key] = v
			}
		}
		merged = filtered
	}

	return Page{
		Component: component,
		Props:     merged,
		URL:       r.URL.RequestURI(),
		Version:   e.version,
	}
}

func partialKeys(r *http.Request, component string) []string {
	if r.Header.Get(HeaderPartialComponent) != component {
		return nil
	}
	raw := strings.TrimSpace(r.Header.Get(HeaderPartialData))
	if raw == "" {
		return nil
	}
	var keys []string
	for _, key := range strings.Split(raw, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func (e *Engine) fail(w http.ResponseWriter, r *http.Request, err error) {
	e.logger.Error("render page", slog.Any("error", err), slog.String("path", r.URL.Path))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
