package errs

import "fmt"

// ConcurrencyConflictError reports a lost race on a contended row. The caller is
// expected to retry the whole operation.
type ConcurrencyConflictError struct {
	Resource string
	Cause    error
}

func NewConcurrencyConflictError(resource string, cause error) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		Resource: resource,
		Cause:    cause,
	}
}

func (e *ConcurrencyConflictError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: %s (cause: %v)", ErrConcurrencyConflict, e.Resource, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s", ErrConcurrencyConflict, e.Resource))
}

func (e *ConcurrencyConflictError) Unwrap() error {
	return ErrConcurrencyConflict
}
