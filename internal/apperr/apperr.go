// Package apperr defines the error taxonomy shared by services and handlers.
// Every failure a flow can produce maps onto one of these values or types, so
// handlers can translate errors to HTTP statuses without string matching.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotFound is returned by the password-change flow, which is
	// allowed to confirm whether an email exists.
	ErrEmailNotFound = errors.New("email not found")

	// ErrInvalidCurrentPassword signals a failed re-authentication during
	// a password change.
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")

	// ErrNotAuthenticated signals a request that reached a protected flow
	// without a resolved identity.
	ErrNotAuthenticated = errors.New("not authorized")

	// ErrNotFound signals that an id no longer resolves to a record.
	ErrNotFound = errors.New("not found")

	// ErrPendingApproval signals a vet account awaiting manual review.
	ErrPendingApproval = errors.New("account is pending approval")
)

// DuplicateError reports a uniqueness violation on a user field. It covers
// both the service-level pre-checks and duplicate-key rejections raised by
// the store when two registrations race.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	switch e.Field {
	case "email":
		return "user with this email already exists"
	case "aadhaarNumber":
		return "Aadhaar number already registered"
	case "licenseNumber":
		return "license number already registered"
	default:
		return fmt.Sprintf("%s already exists", e.Field)
	}
}

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field violation found in a request, not
// just the first one.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validation builds a ValidationError from field/message pairs.
func Validation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}
