// Package errors provides sentinel errors and structured error details for lbake.
package errors

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DetailError is an error with enough context to act on: what went wrong,
// where in the scene or config it happened, and what to run next. The
// sentinel in Cause decides the exit code.
type DetailError struct {
	Type     string
	Message  string
	Location string // scene node, store attribute or file path
	Field    string // render set field, e.g. "Kitchen.resolution"
	Context  map[string]string
	Hint     string
	Cause    error
}

func (e *DetailError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", e.Type)

	pairs := [][2]string{{"Location", e.Location}, {"Field", e.Field}}
	for _, k := range slices.Sorted(maps.Keys(e.Context)) {
		pairs = append(pairs, [2]string{k, e.Context[k]})
	}
	for _, kv := range pairs {
		if kv[1] != "" {
			fmt.Fprintf(&b, "  %s: %s\n", kv[0], kv[1])
		}
	}

	fmt.Fprintf(&b, "\n  %s\n", e.Message)
	if e.Hint != "" {
		fmt.Fprintf(&b, "\nHint: %s\n", e.Hint)
	}
	return b.String()
}

func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error with details.
func NewValidationError(message, location, field, hint string) error {
	return &DetailError{
		Type:     "validation failed",
		Message:  message,
		Location: location,
		Field:    field,
		Hint:     hint,
		Cause:    ErrValidation,
	}
}

// NewStaleReferencesError reports how many dangling references block a bake.
func NewStaleReferencesError(count int, sets []string) error {
	return &DetailError{
		Type:    "stale references",
		Message: fmt.Sprintf("%d invalid object or render layer reference(s) found", count),
		Context: map[string]string{"Render sets": strings.Join(sets, ", ")},
		Hint:    "Run 'lbake validate --repair' or pass --repair to remove them.",
		Cause:   ErrStaleReferences,
	}
}

// NewConnectivityError reports a helper process or cluster that cannot be
// reached.
func NewConnectivityError(message string, context map[string]string, hint string) error {
	return &DetailError{
		Type:    "connectivity failed",
		Message: message,
		Context: context,
		Hint:    hint,
		Cause:   ErrConnectivity,
	}
}

// NewNotFoundError reports a missing scene node, layer or export directory.
func NewNotFoundError(message, location, hint string) error {
	return &DetailError{
		Type:     "not found",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// Wrap prefixes sentinel with message so errors.Is still matches.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
