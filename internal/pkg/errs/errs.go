package errs

import (
	"errors"
	"strings"
)

var (
	ErrObjectNotFound      = errors.New("object not found")
	ErrValueIsInvalid      = errors.New("value is invalid")
	ErrValueIsOutOfRange   = errors.New("value is out of range")
	ErrValueIsRequired     = errors.New("value is required")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrProviderRejected    = errors.New("provider rejected the operation")
	ErrProviderUnavailable = errors.New("provider is unavailable")
	ErrInvalidStatusCode   = errors.New("status code is invalid")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
)

// IsValidation reports whether err is a policy or input rejection that must be
// surfaced to the caller together with the failing field.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValueIsInvalid) ||
		errors.Is(err, ErrValueIsRequired) ||
		errors.Is(err, ErrValueIsOutOfRange)
}

// FieldOf extracts the failing parameter name from a validation error chain.
// Invalid values win over missing ones, missing ones over range violations.
func FieldOf(err error) string {
	var invalid *ValueIsInvalidError
	if errors.As(err, &invalid) {
		return invalid.ParamName
	}
	var required *ValueIsRequiredError
	if errors.As(err, &required) {
		return required.ParamName
	}
	var outOfRange *ValueIsOutOfRangeError
	if errors.As(err, &outOfRange) {
		return outOfRange.ParamName
	}
	return ""
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
