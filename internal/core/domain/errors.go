package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors raised by the issuance core. The API layer maps them to
// response codes with errors.Is; messages are for humans and logs only.
var (
	// ErrPermissionDenied covers expiration-cap violations, updates without a
	// matching permanent prior issuance, and demo-only flows invoked with a
	// non-demo key. Nothing is persisted when it is raised.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrScriptNotFound is returned when a script identity does not resolve.
	ErrScriptNotFound = errors.New("script not found")

	// ErrValidation covers malformed request parameters and extra_params
	// schema mismatches, all rejected before the core runs.
	ErrValidation = errors.New("validation failed")
)

// PermissionDeniedf wraps ErrPermissionDenied with a formatted reason.
func PermissionDeniedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, fmt.Sprintf(format, args...))
}

// ValidationErrorf wraps ErrValidation with a formatted reason.
func ValidationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
