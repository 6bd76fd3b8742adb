package http

import (
	"errors"
	"net/http"

	"github.com/koreline/koreline-hub/internal/domain/shared"
	"github.com/koreline/koreline-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// Translates domain errors to HTTP statuses. Anything unrecognized is a 500
// with a generic body; the real error goes to the log, not to the client.
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps err to a status code and writes the error response.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, status, code, "An unexpected error occurred")
		return
	}

	writeJSONError(w, status, code, err.Error())
}

// classify picks the status and machine-readable code for a domain error.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrInsufficientTokens):
		return http.StatusUnprocessableEntity, "insufficient_tokens"
	case errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, shared.ErrAlreadyExists), errors.Is(err, shared.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, shared.ErrInvalidState), errors.Is(err, shared.ErrStateTransition):
		return http.StatusConflict, "invalid_state"
	case shared.IsValidation(err):
		return http.StatusUnprocessableEntity, "validation_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
