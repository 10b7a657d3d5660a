package args

import (
	"errors"
	"fmt"
)

// ErrMalformedArguments is matched by every validation failure.
var ErrMalformedArguments = errors.New("malformed arguments")

// ValidationError represents a validation failure for one tool call
type ValidationError struct {
	Tool    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, e.Message)
	}
	return fmt.Sprintf("invalid arguments for %s: field '%s' %s", e.Tool, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrMalformedArguments
}
