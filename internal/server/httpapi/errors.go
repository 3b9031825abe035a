package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/notehub/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps the error taxonomy to HTTP status codes. The GraphQL
// adapter maps the same taxonomy to error codes; the two tables must keep
// reporting equivalent conditions.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrDuplicateContent),
		errors.Is(err, common.ErrDuplicateUsername):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	switch {
	case errors.Is(err, common.ErrPartialFailure):
		// Distinct signal: the note write and its owner back-reference
		// diverged. Operators reconcile from this line.
		s.logger.Error(r.Context(), "partial failure", "path", r.URL.Path, "error", err.Error())
	case status >= http.StatusInternalServerError:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
