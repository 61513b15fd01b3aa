package apperrors

import (
	"errors"
	"fmt"
)

// Generic kinds, one per HTTP class the API exposes. Domain errors wrap one
// of these so handlers can map any error to a status with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrPersistence  = errors.New("persistence failure")
)

var (
	ErrInvalidOperation   = fmt.Errorf("operation must be one of: add, subtract, multiply, divide (%w)", ErrValidation)
	ErrDivisionByZero     = fmt.Errorf("division by zero is not allowed (%w)", ErrValidation)
	ErrParentTreeMismatch = fmt.Errorf("parent node does not belong to the specified tree (%w)", ErrValidation)
	ErrParentNotFound     = fmt.Errorf("parent node %w", ErrNotFound)
	ErrTreeNotFound       = fmt.Errorf("tree %w", ErrNotFound)
	ErrUsernameTaken      = fmt.Errorf("username already exists (%w)", ErrConflict)
	ErrInvalidToken       = fmt.Errorf("invalid or expired token (%w)", ErrUnauthorized)
	ErrBadCredentials     = fmt.Errorf("invalid username or password (%w)", ErrUnauthorized)
)

// Kind returns the wire-level error kind for an error, defaulting to
// InternalError for anything outside the taxonomy.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrUnauthorized):
		return "UnauthorizedError"
	case errors.Is(err, ErrNotFound):
		return "NotFoundError"
	case errors.Is(err, ErrConflict):
		return "ConflictError"
	default:
		return "InternalError"
	}
}

// HTTPStatus maps an error to the response status for its kind.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return 400
	case errors.Is(err, ErrUnauthorized):
		return 401
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrConflict):
		return 409
	default:
		return 500
	}
}
