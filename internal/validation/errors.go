// Package validation runs struct rules and collects field level messages.
package validation

import (
	"errors"
	"sort"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Errors maps form field names to the first failing message.
type Errors map[string]string

// Error implements error with the messages in field order.
func (e Errors) Error() string {
	if len(e) == 0 {
		return shared.ErrValidation.Error()
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, e[field])
	}
	return strings.Join(msgs, " ")
}

// Is lets callers match with errors.Is(err, shared.ErrValidation).
func (e Errors) Is(target error) bool {
	return target == shared.ErrValidation
}

// Add records a message unless the field already failed.
func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; exists {
		return
	}
	e[field] = msg
}

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Err returns nil when no field failed.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Merge copies messages of other that are not present yet.
func (e Errors) Merge(other Errors) {
	for field, msg := range other {
		e.Add(field, msg)
	}
}

// FromError extracts field errors from err, nil when err carries none.
func FromError(err error) Errors {
	var errs Errors
	if errors.As(err, &errs) {
		return errs
	}
	return nil
}

// Invalid is the message used when a referenced record does not exist.
func Invalid(field string) string {
	return "The selected " + label(field) + " is invalid."
}
