// Package graphapi is the GraphQL protocol adapter. It exposes the same
// domain operations as the REST adapter and translates the same error
// taxonomy into typed error codes inside the GraphQL error envelope.
package graphapi

import (
	"errors"

	"github.com/dmitrijs2005/notehub/internal/common"
)

// apiError satisfies gqlerrors.ExtendedError so the code lands in the
// response under extensions.code.
type apiError struct {
	msg  string
	code string
}

func (e *apiError) Error() string { return e.msg }

func (e *apiError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

// translate maps the error taxonomy to GraphQL error codes. The REST
// adapter maps the same taxonomy to HTTP status codes; the two tables must
// keep reporting equivalent conditions.
func translate(err error) *apiError {
	switch {
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return &apiError{msg: err.Error(), code: "UNAUTHENTICATED"}
	case errors.Is(err, common.ErrForbidden):
		return &apiError{msg: err.Error(), code: "FORBIDDEN"}
	case errors.Is(err, common.ErrorNotFound):
		return &apiError{msg: err.Error(), code: "NOT_FOUND"}
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrDuplicateContent),
		errors.Is(err, common.ErrDuplicateUsername):
		return &apiError{msg: err.Error(), code: "BAD_USER_INPUT"}
	case errors.Is(err, common.ErrUnavailable):
		return &apiError{msg: err.Error(), code: "SERVICE_UNAVAILABLE"}
	default:
		return &apiError{msg: "internal error", code: "INTERNAL_SERVER_ERROR"}
	}
}
