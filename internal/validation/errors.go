package validation

import (
	"errors"
	"strings"
)

// Error is a user-correctable input problem on a single field.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}

// Errors collects every field problem found in one request.
type Errors []*Error

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

// Add appends err when it is a field error. Other errors are wrapped under field.
func (e *Errors) Add(field string, err error) {
	if err == nil {
		return
	}
	var fe *Error
	if errors.As(err, &fe) {
		*e = append(*e, fe)
		return
	}
	*e = append(*e, &Error{Field: field, Message: err.Error()})
}

// Err returns nil when nothing was collected.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// IsValidationError reports whether err carries field errors.
func IsValidationError(err error) bool {
	var fe *Error
	var fes Errors
	return errors.As(err, &fe) || errors.As(err, &fes)
}
