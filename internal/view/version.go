package view

import "net/http"

// VersionGuard forces a full reload when a client renderer carries stale assets.
func (e *Engine) VersionGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.Header.Get(HeaderInertia) == "true" {
			if v := r.Header.Get(HeaderVersion); v != e.version {
				w.Header().Set(HeaderLocation, absoluteURL(r))
				w.WriteHeader(http.StatusConflict)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func absoluteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
