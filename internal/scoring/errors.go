package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig wraps structural scoring-config failures.
var ErrInvalidConfig = errors.New("invalid scoring config")

// ErrNoModel indicates a model operation was requested with no model loaded.
var ErrNoModel = errors.New("no statistical model loaded")

// FieldError pinpoints one invalid field in a configuration document.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates all field-level failures found in one
// configuration document, so startup reports every problem at once
// rather than failing on the first.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%v: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
