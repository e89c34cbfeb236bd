package shared

import "github.com/pkg/errors"

// Failure classes for catalog and injection operations. Stage code wraps
// these with the stage name and OS error so errors.Is still classifies the
// failure while the message stays actionable.
var (
	// ErrNotFound: the target process vanished or never matched.
	ErrNotFound = errors.New("process not found")

	// ErrAccessDenied: the OS refused the requested rights, usually a
	// privilege mismatch between caller and target.
	ErrAccessDenied = errors.New("access denied")

	// ErrResourceExhausted: remote allocation or write failed.
	ErrResourceExhausted = errors.New("remote memory operation failed")

	// ErrResolutionFailed: loader symbol or module-table lookup failed.
	ErrResolutionFailed = errors.New("loader resolution failed")

	// ErrParse: malformed executable image.
	ErrParse = errors.New("malformed executable image")

	// ErrIO: filesystem failure.
	ErrIO = errors.New("i/o error")
)
