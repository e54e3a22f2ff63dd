package errs

import "fmt"

// ProviderRejectedError carries the business reason returned by the delivery
// provider. Message is surfaced to the caller verbatim.
type ProviderRejectedError struct {
	Operation string
	Message   string
}

func NewProviderRejectedError(operation, message string) *ProviderRejectedError {
	return &ProviderRejectedError{
		Operation: operation,
		Message:   message,
	}
}

func (e *ProviderRejectedError) Error() string {
	return sanitize(fmt.Sprintf("%s: %s: %s", ErrProviderRejected, e.Operation, e.Message))
}

func (e *ProviderRejectedError) Unwrap() error {
	return ErrProviderRejected
}

// ProviderUnavailableError is a transport level failure: no usable response was
// received from the delivery provider.
type ProviderUnavailableError struct {
	Operation string
	Cause     error
}

func NewProviderUnavailableError(operation string, cause error) *ProviderUnavailableError {
	return &ProviderUnavailableError{
		Operation: operation,
		Cause:     cause,
	}
}

func (e *ProviderUnavailableError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: %s (cause: %v)", ErrProviderUnavailable, e.Operation, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s", ErrProviderUnavailable, e.Operation))
}

func (e *ProviderUnavailableError) Unwrap() error {
	return ErrProviderUnavailable
}

type InvalidStatusCodeError struct {
	Code int
}

func NewInvalidStatusCodeError(code int) *InvalidStatusCodeError {
	return &InvalidStatusCodeError{Code: code}
}

func (e *InvalidStatusCodeError) Error() string {
	return fmt.Sprintf("%s: %d", ErrInvalidStatusCode, e.Code)
}

func (e *InvalidStatusCodeError) Unwrap() error {
	return ErrInvalidStatusCode
}
