// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Service errors.
var (
	// ErrInvalidCredentials is returned for every failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
	// ErrInvalidToken is returned when a token is absent, malformed, unknown or belongs to an inactive user.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound is returned when the authenticated user no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoOwner is returned when a scoped operation runs without an authenticated owner.
	ErrNoOwner = errors.New("operation requires an authenticated owner")
)

// Validation messages.
const (
	msgRequired     = "This field is required."
	msgBlank        = "This field may not be blank."
	msgInvalidEmail = "Enter a valid email address."
	msgEmailTaken   = "user with this email already exists."
	msgNotInteger   = "A valid integer is required."
	msgNotNumber    = "A valid number is required."
)

// ValidationError reports invalid input, keyed by field name.
type ValidationError struct {
	Fields map[string][]string
}

// Add records a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil returns e when it holds at least one message, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldError builds a ValidationError with a single message.
func fieldError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

func msgMaxLength(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

func msgMinLength(n int) string {
	return fmt.Sprintf("Ensure this field has at least %d characters.", n)
}

// TypeMismatch reports a request field whose JSON type is wrong.
// expected is the Go kind the field decodes into, e.g. "int" or "slice".
func TypeMismatch(field, expected, got string) *ValidationError {
	switch expected {
	case "int", "int64", "uint", "uint64":
		return fieldError(field, msgNotInteger)
	case "price", "float64":
		return fieldError(field, msgNotNumber)
	case "slice", "array":
		return fieldError(field, fmt.Sprintf("Expected a list of items but got type %q.", got))
	case "bool":
		return fieldError(field, "Must be a valid boolean.")
	default:
		return fieldError(field, "Not a valid string.")
	}
}
