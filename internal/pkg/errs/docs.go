// Package errs provides the error taxonomy shared by the order engine.
//
// Validation kinds (ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError)
// carry the name of the failing field in ParamName so that transports can report it.
// ObjectNotFoundError covers missing orders and catalog entries.
//
// Engine specific kinds:
//   - ConcurrencyConflictError: a lost race on the claim queue or the rotation pointer
//   - ProviderRejectedError: the delivery provider declined with a business reason
//   - ProviderUnavailableError: no usable response from the delivery provider
//   - InvalidStatusCodeError: webhook status code missing from the configured map
//   - ErrUnauthorized, ErrForbidden: credential and role failures
//
// Every type exposes a sentinel through Unwrap so callers classify with errors.Is.
package errs
