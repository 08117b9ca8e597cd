package service

import (
	"errors"
	"sort"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrEditConflict   = errors.New("edit conflict")
)

// ValidationError carries one message per violated field constraint.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "failed validation"
}

// Messages returns one human-readable message per violated field, ordered by
// field name so responses are stable.
func (e *ValidationError) Messages() []string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, field+" "+e.Fields[field])
	}
	return messages
}

// failedValidation wraps a validator error map in a ValidationError.
func failedValidation(errorMap map[string]string) error {
	return &ValidationError{Fields: errorMap}
}
