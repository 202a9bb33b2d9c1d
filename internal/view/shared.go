package view

import (
	"encoding/json"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

const errorsSessionKey = "_errors"

// sessionProps exposes the CSRF token, pending flashes and errors kept across a redirect.
func sessionProps(r *http.Request) Props {
	sess := shared.SessionFromContext(r.Context())
	flash := map[string]string{}
	props := Props{"flash": flash, "csrf_token": ""}
	if sess == nil {
		return props
	}
	props["csrf_token"] = sess.Get(shared.CSRFSessionKey)
	for msg := sess.PopFlash(); msg != nil; msg = sess.PopFlash() {
		flash[msg.Kind] = msg.Message
	}
	if raw := sess.Get(errorsSessionKey); raw != "" {
		sess.Delete(errorsSessionKey)
		var errs map[string]string
		if err := json.Unmarshal([]byte(raw), &errs); err == nil {
			props["errors"] = errs
		}
	}
	return props
}
