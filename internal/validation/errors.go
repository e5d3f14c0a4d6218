package validation

import (
	"errors"
	"strings"
)

// ErrValidation matches any ValidationError or MultiValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError is a single field-level rule violation.
// Message is human readable and surfaced to callers unmodified.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Details returns the structured fields of this violation.
func (e *ValidationError) Details() map[string]interface{} {
	d := map[string]interface{}{"message": e.Message}
	if e.Field != "" {
		d["field"] = e.Field
	}
	return d
}

// MultiValidationError aggregates every violation found on one record.
type MultiValidationError struct {
	Errors []*ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *MultiValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap exposes the individual violations to errors.As.
func (e *MultiValidationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, ve := range e.Errors {
		errs[i] = ve
	}
	return errs
}

// Details aggregates the failed field names and messages.
func (e *MultiValidationError) Details() map[string]interface{} {
	d := make(map[string]interface{})
	var fields []string
	messages := make(map[string]string, len(e.Errors))
	for _, ve := range e.Errors {
		if ve.Field != "" {
			fields = append(fields, ve.Field)
			messages[ve.Field] = ve.Message
		}
	}
	if len(fields) > 0 {
		d["fields"] = fields
		d["messages"] = messages
	}
	return d
}

// Field returns the first violation recorded for field, or nil.
func (e *MultiValidationError) Field(field string) *ValidationError {
	for _, ve := range e.Errors {
		if ve.Field == field {
			return ve
		}
	}
	return nil
}

// collector accumulates violations while a pipeline runs.
type collector struct {
	errs []*ValidationError
}

func (c *collector) add(field, message string) {
	c.errs = append(c.errs, &ValidationError{Field: field, Message: message})
}

func (c *collector) has(field string) bool {
	for _, ve := range c.errs {
		if ve.Field == field {
			return true
		}
	}
	return false
}

func (c *collector) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &MultiValidationError{Errors: c.errs}
}
