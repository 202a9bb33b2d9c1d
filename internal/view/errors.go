package view

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/validation"
)

// ErrorComponent is rendered for failures that have no form to return to.
const ErrorComponent = "Error"

// Error maps err to a status and renders the Error page, or problem JSON for API clients.
func (e *Engine) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := httpx.StatusFor(err)
	if status >= http.StatusInternalServerError {
		e.logger.Error("request failed",
			slog.Any("error", err),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path))
	}
	if httpx.WantsJSON(r) {
		httpx.RespondError(w, err)
		return
	}
	props := Props{
		"status":  status,
		"message": errorMessage(status, err),
	}
	if errs := validation.FromError(err); errs != nil {
		props["errors"] = errs
	}
	e.RenderStatus(w, r, status, ErrorComponent, props)
}

func errorMessage(status int, err error) string {
	if status >= http.StatusInternalServerError {
		return "Server Error"
	}
	if status == http.StatusNotFound {
		return "Not Found"
	}
	if msg := shared.UserSafeMessage(err); msg != "" {
		return msg
	}
	return httpx.StatusText(status)
}
