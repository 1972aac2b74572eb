package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"text/template"

	"github.com/lightbake/lbake/internal/output"
)

// ErrNoCommand is returned when a renderer is used without a configured command.
var ErrNoCommand = errors.New("no renderer command configured")

// runFunc executes name with args and returns combined output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// ExecRenderer runs an external command per bake. Each argument is a
// text/template evaluated against the Request (or SnapshotRequest), e.g.
//
//	["bake-lm", "--uv", "{{.UVSet}}", "--res", "{{.Resolution}}", "--out", "{{.OutputPath}}", "{{join .Objects \",\"}}"]
type ExecRenderer struct {
	bake     []*template.Template
	snapshot []*template.Template
	run      runFunc
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// NewExecRenderer parses the bake command template and, when non-empty, the
// UV snapshot command template.
func NewExecRenderer(bakeCmd, snapshotCmd []string) (*ExecRenderer, error) {
	if len(bakeCmd) == 0 {
		return nil, ErrNoCommand
	}
	bake, err := parseArgs("bake", bakeCmd)
	if err != nil {
		return nil, err
	}
	r := &ExecRenderer{bake: bake, run: runCommand}
	if len(snapshotCmd) > 0 {
		if r.snapshot, err = parseArgs("snapshot", snapshotCmd); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func parseArgs(name string, args []string) ([]*template.Template, error) {
	out := make([]*template.Template, 0, len(args))
	for i, a := range args {
		t, err := template.New(fmt.Sprintf("%s[%d]", name, i)).Funcs(funcs).Option("missingkey=error").Parse(a)
		if err != nil {
			return nil, fmt.Errorf("parsing %s command argument %d: %w", name, i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func expand(tmpls []*template.Template, data any) ([]string, error) {
	argv := make([]string, 0, len(tmpls))
	var buf bytes.Buffer
	for _, t := range tmpls {
		buf.Reset()
		if err := t.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("expanding %s: %w", t.Name(), err)
		}
		argv = append(argv, buf.String())
	}
	return argv, nil
}

// Bake implements Service.
func (r *ExecRenderer) Bake(ctx context.Context, req Request) error {
	argv, err := expand(r.bake, req)
	if err != nil {
		return err
	}
	return r.exec(ctx, argv, "artifact", req.ArtifactName)
}

// CanSnapshot reports whether a snapshot command is configured.
func (r *ExecRenderer) CanSnapshot() bool {
	return len(r.snapshot) > 0
}

// UVSnapshot implements UVSnapshotter.
func (r *ExecRenderer) UVSnapshot(ctx context.Context, req SnapshotRequest) error {
	if !r.CanSnapshot() {
		return fmt.Errorf("uv snapshot: %w", ErrNoCommand)
	}
	argv, err := expand(r.snapshot, req)
	if err != nil {
		return err
	}
	return r.exec(ctx, argv, "snapshot", req.Path)
}

func (r *ExecRenderer) exec(ctx context.Context, argv []string, kind, name string) error {
	output.Debug("running renderer", kind, name, "argv", argv)
	out, err := r.run(ctx, argv[0], argv[1:]...)
	if len(out) > 0 {
		output.Debug("renderer output", kind, name, "output", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("renderer %s for %s: %w", argv[0], name, err)
	}
	return nil
}
