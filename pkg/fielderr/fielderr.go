// Package fielderr carries per-field form validation messages.
package fielderr

import (
	"errors"
	"sort"
	"strings"
)

// FormField holds messages that do not belong to a single input.
const FormField = "_form"

// Errors maps a form field name to its messages.
type Errors map[string][]string

func New(field, message string) Errors {
	errs := Errors{}
	errs.Add(field, message)
	return errs
}

func Form(message string) Errors {
	return New(FormField, message)
}

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Any() bool {
	return len(e) > 0
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// As extracts field errors from err, if any.
func As(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
