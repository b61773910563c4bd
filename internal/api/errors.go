package api

import "errors"

var (
	// ErrNotFound means the server reported the requested letter absent
	ErrNotFound = errors.New("letter not found")

	// ErrUnauthenticated means no valid session exists for a call that
	// needs one. No request was sent.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrSessionExpired means the server answered 401 to an authenticated
	// call: the stored token is no longer accepted and the user has to log
	// in again.
	ErrSessionExpired = errors.New("session expired")
)

// ValidationError carries a structured error message from the server, e.g. a
// duplicate email on register or an active letter cooldown. The message is
// shown to the user verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
