package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced row does not exist or is not
// visible to the requesting actor. Ownership failures deliberately look the
// same as missing rows so ids cannot be probed.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the actor can see the target entity but
// lacks permission for the operation (wrong role).
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateUsername is returned when a username already exists.
var ErrDuplicateUsername = errors.New("duplicate username")

// ValidationError reports caller-supplied data that violates an invariant.
// The message is safe to surface verbatim to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
