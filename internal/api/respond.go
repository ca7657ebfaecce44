package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/thomurie/jobly/internal/auth"
	"github.com/thomurie/jobly/internal/repository"
	"github.com/thomurie/jobly/query/sqlgen"
	"github.com/thomurie/jobly/runtime/client"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message  string   `json:"message"`
	Messages []string `json:"messages,omitempty"`
	Status   int      `json:"status"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sqlgen.ErrInvalidInput),
		errors.Is(err, repository.ErrBadRequest),
		client.IsConstraintError(err):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as a JSON error body. Server errors are logged and
// reported with a generic message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	detail := errorDetail{Message: err.Error(), Status: status}

	var bre *repository.BadRequestError
	if errors.As(err, &bre) && len(bre.Messages) > 1 {
		detail.Messages = bre.Messages
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		detail.Message = http.StatusText(status)
	}

	WriteJSON(w, status, errorBody{Error: detail})
}
