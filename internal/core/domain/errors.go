package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("role does not match portal")
	ErrNetwork            = errors.New("backend unreachable")
	ErrNotFound           = errors.New("not found")

	// ErrOrphanedReference marks a product whose category is not in the
	// supplied list. Resolvers recover from it; it never reaches a client.
	ErrOrphanedReference = errors.New("orphaned category reference")

	ErrMissingCredentials = errors.New("email and password are required")
	ErrSubmitInProgress   = errors.New("login already in progress")
	ErrInvalidStockLevel  = errors.New("invalid stock level")

	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// BackendError is a failure reported by a backend collaborator. Message is the
// backend's own wording, shown verbatim to the user when non-empty.
type BackendError struct {
	Err     error
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Message
}

func (e *BackendError) Unwrap() error { return e.Err }

// BackendMessage returns the backend-supplied message carried by err, if any.
func BackendMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}
