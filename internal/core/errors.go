package core

import "errors"

var (
	// ErrNotFound is returned when a referenced item does not exist.
	ErrNotFound = errors.New("item not found")

	// ErrForbidden is returned on ownership mismatches, including reorder
	// payloads whose id set does not exactly match the owner's items.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidOrder is returned for reorder payloads that are empty or
	// not a list of identifiers.
	ErrInvalidOrder = errors.New("invalid order payload")

	// ErrNothingToUndo is returned when no undo snapshot exists for the owner.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrUndoExpired is returned when the undo window has passed.
	ErrUndoExpired = errors.New("undo window expired")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrSessionExpired     = errors.New("session expired")
)

// ValidationError marks user-correctable input errors. Handlers report the
// message verbatim and never retry.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
