package httpx

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

const (
	maxFormBytes      = 10 << 20
	maxMultipartBytes = 32 << 20
)

// ParseForm parses the request body for every method. net/http skips DELETE bodies.
// Multipart bodies are read in full so later FormValue calls see their fields.
func ParseForm(r *http.Request) error {
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "multipart/form-data" && r.Method != http.MethodGet {
		if err := r.ParseMultipartForm(maxMultipartBytes); err != nil {
			return fmt.Errorf("httpx: parse multipart form: %w", err)
		}
		return nil
	}
	if r.PostForm == nil && r.Method == http.MethodDelete && r.Body != nil {
		ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if ct == "application/x-www-form-urlencoded" {
			raw, err := io.ReadAll(io.LimitReader(r.Body, maxFormBytes+1))
			if err != nil {
				return fmt.Errorf("httpx: read form: %w", err)
			}
			if len(raw) > maxFormBytes {
				return fmt.Errorf("httpx: form body too large")
			}
			values, err := url.ParseQuery(string(raw))
			if err != nil {
				return fmt.Errorf("httpx: parse form: %w", err)
			}
			r.PostForm = values
		}
	}
	return r.ParseForm()
}
