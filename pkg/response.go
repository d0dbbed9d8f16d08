package pkg

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mysupport/mysupport/pkg/i18n"
)

// ErrorResponse is the body of every failed request. Clients show Error
// verbatim, falling back to their own generic message when it is empty.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// JSON writes data as the response body. The wire shapes are fixed per
// endpoint ({entries: [...]}, {success, session_token, user}, ...) so there
// is no common envelope on success.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// Error writes an error response. Domain errors are mapped to a status code
// and LocalizedError keys are translated into the request language. Messages
// of unexpected (5xx) errors are never sent to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToStatus(err)
	localizer := i18n.FromContext(r.Context())

	var message string
	var lerr *LocalizedError
	switch {
	case errors.As(err, &lerr):
		message = localizer.TWithParams(lerr.Key, lerr.Params)
	case status == http.StatusInternalServerError:
		message = localizer.T("errors.internal")
	default:
		message = err.Error()
	}

	ErrorWithMessage(w, status, message)
}

// ErrorWithMessage writes an error response with a ready-made message.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode error response", http.StatusInternalServerError)
	}
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
