package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	info := Get()

	require.NotEmpty(t, info.GoVersion, "GoVersion should be populated")
	require.NotEmpty(t, info.CUESDKVersion, "CUESDKVersion should be populated")
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:       "v1.0.0",
		GitCommit:     "abc123",
		BuildDate:     "2026-01-29",
		GoVersion:     "go1.25",
		CUESDKVersion: "v0.15.4",
	}

	str := info.String()

	assert.Contains(t, str, "v1.0.0")
	assert.Contains(t, str, "abc123")
	assert.Contains(t, str, "2026-01-29")
	assert.Contains(t, str, "go1.25")
	assert.Contains(t, str, "v0.15.4")
}

func TestDetectTool(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(name string) (string, error) {
		if name == "bake-lm" {
			return "/usr/local/bin/bake-lm", nil
		}
		return "", errors.New("not found")
	}

	tests := []struct {
		name      string
		argv      []string
		wantFound bool
		wantText  string
	}{
		{name: "found", argv: []string{"bake-lm", "--x"}, wantFound: true, wantText: "/usr/local/bin/bake-lm"},
		{name: "missing", argv: []string{"psbridge"}, wantText: "psbridge (not found in PATH)"},
		{name: "unconfigured", wantText: "- (not configured)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := DetectTool("renderer", tt.argv)
			assert.Equal(t, tt.wantFound, info.Found)
			assert.Contains(t, info.String(), tt.wantText)
		})
	}
}

func TestFullVersionString(t *testing.T) {
	s := FullVersionString(Info{Version: "v1.2.3"}, []ToolInfo{
		{Role: "renderer", Command: "bake-lm", Path: "/bin/bake-lm", Found: true},
		{Role: "compositor", Message: "not configured"},
	})
	assert.Contains(t, s, "v1.2.3")
	assert.Contains(t, s, "Tools:")
	assert.Contains(t, s, "/bin/bake-lm")
	assert.Contains(t, s, "compositor")
}
