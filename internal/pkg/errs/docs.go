// Package errs provides standardized error types for the fulfillment application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package covers the full error taxonomy of the order lifecycle:
//   - ValueIsRequiredError / ValueIsInvalidError / ValueIsOutOfRangeError: validation failures
//   - ObjectNotFoundError: referenced order/vendor/rider does not exist
//   - UnauthorizedError: role or ownership mismatch for the requested operation
//   - ConflictError: the order changed concurrently since it was read
//   - NotCancellableError: the order is outside the cancellable status set
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g. ErrConflict)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method so errors.Is can classify against the sentinel
package errs
