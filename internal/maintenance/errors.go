package maintenance

import (
	"errors"
	"fmt"
)

var (
	ErrMachineNotFound = errors.New("Machine not found")
	ErrRecordNotFound  = errors.New("Maintenance task not found")

	// ErrAlreadyCompleted is returned when completing a record twice.
	ErrAlreadyCompleted = &ValidationError{Message: "Maintenance task is already completed"}
)

// ValidationError reports malformed or missing input. Field is the JSON name
// of the offending field when one applies.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
