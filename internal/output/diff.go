package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
)

// DiffYAML computes a human-readable, YAML-aware diff between two documents.
// An empty string means no differences.
func DiffYAML(beforeName string, before []byte, afterName string, after []byte, useColor bool) (string, error) {
	if len(bytes.TrimSpace(before)) == 0 && len(bytes.TrimSpace(after)) == 0 {
		return "", nil
	}

	from, err := yamlInput(beforeName, before)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", beforeName, err)
	}
	to, err := yamlInput(afterName, after)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", afterName, err)
	}

	report, err := dyff.CompareInputFiles(from, to)
	if err != nil {
		return "", fmt.Errorf("comparing YAML: %w", err)
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	writer := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}
	if err := writer.WriteReport(&buf); err != nil {
		return "", fmt.Errorf("rendering diff: %w", err)
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}

func yamlInput(name string, data []byte) (ytbx.InputFile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return ytbx.InputFile{Location: name}, nil
	}

	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}

	return ytbx.InputFile{Location: name, Documents: docs}, nil
}

// IndentDiff indents every non-empty line of diff.
func IndentDiff(diff string, indent string) string {
	if diff == "" {
		return ""
	}

	var sb strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		if line != "" {
			sb.WriteString(indent)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
