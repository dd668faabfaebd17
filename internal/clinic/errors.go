package clinic

import (
	"errors"

	"vetclinic/m/internal/store"
)

var (
	ErrNotFound          = store.ErrNotFound
	ErrInsufficientStock = store.ErrInsufficientStock
	ErrDuplicate         = store.ErrDuplicate
)

// ValidationError reports malformed or out-of-range input. It is always
// raised before any write is attempted. Message doubles as the translation
// key shown to the operator.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
