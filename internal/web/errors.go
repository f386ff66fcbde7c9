package web

// errors.go turns service errors into JSON responses. The technical error is
// logged with the request ID; the client gets the mapped user message and
// its code.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/vscan/internal/core"
	"github.com/JonMunkholm/vscan/internal/dataset"
	"github.com/JonMunkholm/vscan/internal/logging"
	"github.com/JonMunkholm/vscan/internal/schema"
	"github.com/JonMunkholm/vscan/internal/summary"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errBadRequest marks request problems found by the handlers themselves.
var errBadRequest = errors.New("bad request")

// respondError logs err and writes its user-facing form.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	if errors.Is(err, errBadRequest) && msg.Code == "ERR000" {
		msg.Message = err.Error()
	}
	writeJSON(w, r, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeError writes a fixed error without mapping.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, ErrorResponse{Error: message, Message: message, Code: code})
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	var unavailable *schema.UnavailableError

	switch {
	case errors.As(err, &tooBig), errors.Is(err, dataset.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, summary.ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, dataset.ErrUnsupportedFormat),
		errors.Is(err, dataset.ErrEmpty),
		errors.As(err, &unavailable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
