// Package cmd provides the lbake command implementations.
package cmd

import (
	"errors"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	oerrors "github.com/lightbake/lbake/internal/errors"
)

// Process exit codes. A bake that finished with failed layers or skipped
// render sets still exits with ExitSuccess.
const (
	ExitSuccess           = 0
	ExitGeneralError      = 1
	ExitValidationError   = 2 // stale references, schema violations, bad names, bad config
	ExitConnectivityError = 3 // cluster or compositor helper unreachable
	ExitPermissionDenied  = 4 // ConfigMap store refused by RBAC
	ExitNotFound          = 5
)

var exitCodeNames = map[int]string{
	ExitSuccess:           "Success",
	ExitGeneralError:      "General Error",
	ExitValidationError:   "Validation Error",
	ExitConnectivityError: "Connectivity Error",
	ExitPermissionDenied:  "Permission Denied",
	ExitNotFound:          "Not Found",
}

// ExitCodeName returns a readable name for code, or "Unknown".
func ExitCodeName(code int) string {
	if name, ok := exitCodeNames[code]; ok {
		return name
	}
	return "Unknown"
}

// sentinelCodes is checked in order; the first match wins.
var sentinelCodes = []struct {
	err  error
	code int
}{
	{oerrors.ErrValidation, ExitValidationError},
	{oerrors.ErrStaleReferences, ExitValidationError},
	{oerrors.ErrConfig, ExitValidationError},
	{oerrors.ErrConnectivity, ExitConnectivityError},
	{oerrors.ErrNotFound, ExitNotFound},
}

// ExitCodeFromError maps an error returned by a command to the process exit
// code. Kubernetes API errors from the ConfigMap store are classified by
// status.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			return sc.code
		}
	}
	var status apierrors.APIStatus
	if errors.As(err, &status) {
		return exitCodeFromK8sError(err)
	}
	return ExitGeneralError
}

func exitCodeFromK8sError(err error) int {
	switch {
	case apierrors.IsNotFound(err):
		return ExitNotFound
	case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
		return ExitPermissionDenied
	case apierrors.IsServerTimeout(err), apierrors.IsServiceUnavailable(err):
		return ExitConnectivityError
	default:
		return ExitGeneralError
	}
}
