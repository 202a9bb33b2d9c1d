package view

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Target describes where a handler sends the client after a mutation.
type Target struct {
	path string
	back bool
}

// To redirects to a fixed path.
func To(path string) Target {
	return Target{path: path}
}

// Back redirects to the referring page, or fallback when none is known.
func Back(fallback string) Target {
	return Target{path: fallback, back: true}
}

// Resolve returns the location for r.
func (t Target) Resolve(r *http.Request) string {
	if t.back {
		if ref := sameOriginReferer(r); ref != "" {
			return ref
		}
	}
	if t.path == "" {
		return "/"
	}
	return t.path
}

// Redirect answers with 303 so the client follows with GET.
func Redirect(w http.ResponseWriter, r *http.Request, target Target) {
	http.Redirect(w, r, target.Resolve(r), http.StatusSeeOther)
}

// RedirectWithFlash queues a flash message then redirects.
func RedirectWithFlash(w http.ResponseWriter, r *http.Request, target Target, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && message != "" {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	Redirect(w, r, target)
}

// RedirectWithErrors keeps field errors in the session for the next render, then redirects.
func RedirectWithErrors(w http.ResponseWriter, r *http.Request, target Target, errs map[string]string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && len(errs) > 0 {
		if raw, err := json.Marshal(errs); err == nil {
			sess.Set(errorsSessionKey, string(raw))
		}
	}
	Redirect(w, r, target)
}

func sameOriginReferer(r *http.Request) string {
	raw := strings.TrimSpace(r.Referer())
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if ref.Host != "" && ref.Host != r.Host {
		return ""
	}
	if ref.Path == "" {
		return ""
	}
	return ref.RequestURI()
}
