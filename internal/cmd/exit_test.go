package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/renderset"
)

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			wantCode: ExitSuccess,
		},
		{
			name:     "validation error",
			err:      oerrors.Wrap(oerrors.ErrValidation, "schema check failed"),
			wantCode: ExitValidationError,
		},
		{
			name:     "stale references",
			err:      oerrors.NewStaleReferencesError(3, []string{"Kitchen"}),
			wantCode: ExitValidationError,
		},
		{
			name:     "config error",
			err:      oerrors.Wrap(oerrors.ErrConfig, "no compositor command"),
			wantCode: ExitValidationError,
		},
		{
			name:     "duplicate render set name",
			err:      fmt.Errorf("creating: %w", renderset.ErrDuplicateName),
			wantCode: ExitValidationError,
		},
		{
			name:     "connectivity error",
			err:      oerrors.ErrConnectivity,
			wantCode: ExitConnectivityError,
		},
		{
			name:     "unknown render set",
			err:      fmt.Errorf("%w: %q", renderset.ErrSetNotFound, "Hall"),
			wantCode: ExitNotFound,
		},
		{
			name:     "stale references win over a wrapped k8s error",
			err:      fmt.Errorf("%w: %w", oerrors.ErrStaleReferences, apierrors.NewBadRequest("x")),
			wantCode: ExitValidationError,
		},
		{
			name:     "unknown error returns general error",
			err:      errors.New("unknown error"),
			wantCode: ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExitCodeFromError(tt.err)
			assert.Equal(t, tt.wantCode, got)
		})
	}
}

func TestExitCodeFromK8sError(t *testing.T) {
	gr := schema.GroupResource{Resource: "configmaps"}

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "not found",
			err:      apierrors.NewNotFound(gr, "lbake-render-sets"),
			wantCode: ExitNotFound,
		},
		{
			name:     "forbidden",
			err:      apierrors.NewForbidden(gr, "lbake-render-sets", nil),
			wantCode: ExitPermissionDenied,
		},
		{
			name:     "unauthorized",
			err:      apierrors.NewUnauthorized("test"),
			wantCode: ExitPermissionDenied,
		},
		{
			name:     "service unavailable",
			err:      apierrors.NewServiceUnavailable("test"),
			wantCode: ExitConnectivityError,
		},
		{
			name:     "other k8s error",
			err:      apierrors.NewBadRequest("test"),
			wantCode: ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, exitCodeFromK8sError(tt.err))
			assert.Equal(t, tt.wantCode, ExitCodeFromError(fmt.Errorf("writing render sets: %w", tt.err)))
		})
	}
}

func TestExitCodeName(t *testing.T) {
	for code := ExitSuccess; code <= ExitNotFound; code++ {
		assert.NotEqual(t, "Unknown", ExitCodeName(code), "code %d", code)
	}
	assert.Equal(t, "Permission Denied", ExitCodeName(ExitPermissionDenied))
	assert.Equal(t, "Unknown", ExitCodeName(42))
}
