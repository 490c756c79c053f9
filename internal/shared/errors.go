package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure. Unknown emails and wrong
	// passwords both map here so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken occurs when a request carries no bearer token.
	ErrMissingToken = errors.New("token not provided")
	// ErrInvalidToken covers bad signatures, malformed payloads and expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict indicates a referential integrity conflict.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates a malformed or incomplete request.
	ErrValidation = errors.New("validation failed")
)

// Error pairs a sentinel kind with a caller-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the sentinel kind for errors.Is checks.
func (e *Error) Unwrap() error { return e.Kind }

// NotFound builds a not-found error carrying the given message.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// AlreadyExists builds a duplicate-entry error carrying the given message.
func AlreadyExists(message string) error {
	return &Error{Kind: ErrAlreadyExists, Message: message}
}

// Conflict builds a referential-conflict error carrying the given message.
func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

// Validation builds a validation error carrying the given message.
func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}
