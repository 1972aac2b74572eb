package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates a rejected value: schema range violations,
	// empty or duplicate render set names.
	ErrValidation = errors.New("validation error")

	// ErrStaleReferences indicates render sets still reference objects or
	// render layers that no longer exist in the scene.
	ErrStaleReferences = errors.New("stale references")

	// ErrConnectivity indicates an external service could not be reached.
	ErrConnectivity = errors.New("connectivity error")

	// ErrNotFound indicates a render set, file, or scene node was not found.
	ErrNotFound = errors.New("not found")

	// ErrConfig indicates an invalid or unreadable configuration.
	ErrConfig = errors.New("configuration error")
)
