package version

import (
	"fmt"
	"os/exec"
)

// ToolInfo describes an external command lbake drives.
type ToolInfo struct {
	// Role is what lbake uses the tool for, e.g. "renderer".
	Role string `json:"role"`

	// Command is the configured executable name.
	Command string `json:"command,omitempty"`

	// Path is where the executable was found.
	Path string `json:"path,omitempty"`

	Found   bool   `json:"found"`
	Message string `json:"message,omitempty"`
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// DetectTool reports whether the first element of argv resolves to an
// executable.
func DetectTool(role string, argv []string) ToolInfo {
	if len(argv) == 0 {
		return ToolInfo{Role: role, Message: "not configured"}
	}

	path, err := lookPath(argv[0])
	if err != nil {
		return ToolInfo{Role: role, Command: argv[0], Message: "not found in PATH"}
	}
	return ToolInfo{Role: role, Command: argv[0], Path: path, Found: true}
}

// String returns a one-line summary.
func (t ToolInfo) String() string {
	if !t.Found {
		name := t.Command
		if name == "" {
			name = "-"
		}
		return fmt.Sprintf("  %-10s %s (%s)", t.Role+":", name, t.Message)
	}
	return fmt.Sprintf("  %-10s %s", t.Role+":", t.Path)
}
