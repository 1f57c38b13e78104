package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, retryable bool) {
	writeJSON(w, status, APIError{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFromContext(r.Context()),
		Retryable: retryable,
	})
}

// writeDispatchError maps client errors onto HTTP statuses. Transport
// failures are the only retryable ones.
func writeDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, rongcloud.ErrUnknownAction):
		writeError(w, r, http.StatusNotFound, "unknown_action", err.Error(), false)
	case errors.Is(err, rongcloud.ErrUnsupportedContentType), errors.Is(err, rongcloud.ErrUnsupportedValue):
		writeError(w, r, http.StatusBadRequest, "invalid_params", err.Error(), false)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "upstream_timeout", err.Error(), true)
	case rongcloud.IsTransportError(err):
		writeError(w, r, http.StatusBadGateway, "upstream_unavailable", err.Error(), true)
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", err.Error(), false)
	}
}
