package workspace

import (
	"fmt"

	"tscribe/internal/services"
)

// FieldError reports invalid form input. It matches services.ErrValidation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == services.ErrValidation
}

func invalid(field, message string) error {
	return &FieldError{Field: field, Message: message}
}
