package http

import (
	"errors"
	"net/http"

	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/internal/service"
	"github.com/shiptrack-io/shiptrack/internal/store"
	"github.com/shiptrack-io/shiptrack/internal/utils"
	"github.com/shiptrack-io/shiptrack/models"
)

var errorStatusMap = map[error]int{
	service.ErrValidation:              http.StatusBadRequest,
	service.ErrInvalidCredentials:      http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrTokenCreationFailed:     http.StatusInternalServerError,

	store.ErrUsernameTaken:       http.StatusConflict,
	store.ErrUserNotFound:        http.StatusNotFound,
	store.ErrShipmentNotFound:    http.StatusNotFound,
	store.ErrNoStorageConfigured: http.StatusInternalServerError,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

// errorMessageMap holds the canonical client-facing message for the errors
// that are safe to surface. Everything else collapses to the generic text of
// its status code.
var errorMessageMap = map[error]string{
	service.ErrInvalidCredentials: "Invalid credentials",
	store.ErrUsernameTaken:        "Username already taken",
	store.ErrUserNotFound:         "User not found",
	store.ErrShipmentNotFound:     "Shipment not found",
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError maps err to its HTTP status and writes the uniform JSON error
// envelope. Validation errors carry their own detail text; server-side
// failures never leak internals to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)

	message := http.StatusText(status)
	switch {
	case status >= http.StatusInternalServerError:
		// keep the generic text
	case errors.Is(err, service.ErrValidation):
		message = err.Error()
	case errors.Is(err, service.ErrTokenIsExpiredOrInvalid):
		message = service.ErrTokenIsExpiredOrInvalid.Error()
	default:
		for target, text := range errorMessageMap {
			if errors.Is(err, target) {
				message = text
				break
			}
		}
	}

	if _, writeErr := utils.WriteJSON(w, models.MessageResponse{Message: message}, status); writeErr != nil {
		logger.FromRequest(r).Err(writeErr).Msg("error writing error response")
	}
}
