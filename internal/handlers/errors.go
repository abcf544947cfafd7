package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jeremyjsx/quickfacts/internal/media"
	"github.com/jeremyjsx/quickfacts/internal/middleware"
	"github.com/jeremyjsx/quickfacts/internal/posts"
	"github.com/jeremyjsx/quickfacts/internal/storage"
)

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Stack     string            `json:"stack,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, map[string]any{
		"error": APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// errorWriter maps service errors onto HTTP responses. Upstream error text is
// passed through; outside production the stack is attached as well.
type errorWriter struct {
	logger *slog.Logger
	debug  bool
}

func (ew errorWriter) write(w http.ResponseWriter, r *http.Request, op string, err error) {
	var validation *posts.ValidationError
	var input *media.InputError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", validation.Error(),
			map[string]string{validation.Field: validation.Message})
		return
	case errors.As(err, &input):
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", input.Error(), nil)
		return
	case errors.Is(err, posts.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
		return
	}

	status := storage.StatusCode(err)
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	reqID := middleware.GetRequestID(r.Context())
	ew.logger.Error(op+" failed", "error", err, "status", status, "request_id", reqID)

	apiErr := APIError{Code: "UPSTREAM_ERROR", Message: err.Error(), RequestID: reqID}
	if ew.debug {
		apiErr.Stack = string(debug.Stack())
	}
	writeJSON(w, status, map[string]any{"error": apiErr})
}
