package bake

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lightbake/lbake/internal/hookup"
)

// Phase is where a render set's pipeline stopped.
type Phase string

const (
	PhasePending     Phase = "pending"
	PhaseBaking      Phase = "baking"
	PhaseCompositing Phase = "compositing"
	PhaseFlattening  Phase = "flattening"
	PhaseDone        Phase = "done"
	PhaseSkipped     Phase = "skipped"
)

// Skip reasons recorded on SetResult.Reason.
const (
	ReasonRequested = "skipped by request"
	ReasonDisabled  = "render set is disabled"
	ReasonNoLayers  = "no render layers"
	ReasonNoObjects = "no objects"
	ReasonDismissed = "layer selection dismissed"
	ReasonNoOutput  = "no lightmaps were produced"
)

// Artifact is a lightmap produced for one render layer. Index is the
// layer's position in the stack, 0 being the first baked before inversion
// and the top of the document after.
type Artifact struct {
	Layer string
	Path  string
	Index int
}

// Failure is a render layer whose lightmap was not produced.
type Failure struct {
	Set      string
	Layer    string
	Artifact string
	Reason   string
}

func (f Failure) String() string {
	return fmt.Sprintf("%s_%s ---> %s", f.Set, f.Layer, f.Artifact)
}

// SetResult is the outcome of one render set.
type SetResult struct {
	Name  string
	Phase Phase

	// Reason explains a skip.
	Reason string

	Selected []string
	Baked    []Artifact
	Failed   []Failure

	Document string
	Export   string
	Snapshot string

	// Notes records stages that were skipped or failed without ending
	// the render set.
	Notes []string
}

func (s *SetResult) skip(reason string) {
	s.Phase = PhaseSkipped
	s.Reason = reason
}

func (s *SetResult) note(format string, args ...any) {
	s.Notes = append(s.Notes, fmt.Sprintf(format, args...))
}

// Report is the outcome of one bake or relink run.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	Sets []*SetResult

	// RenderLayer is the scene's render layer before the run, restored
	// afterwards.
	RenderLayer string

	Hookup   hookup.Assignments
	Enabled  hookup.Result
	Assigned hookup.Result
}

func newReport() *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Hookup:  hookup.Assignments{},
	}
}

func (r *Report) addSet(name string) *SetResult {
	s := &SetResult{Name: name, Phase: PhasePending}
	r.Sets = append(r.Sets, s)
	return s
}

// Set returns the result for name.
func (r *Report) Set(name string) (*SetResult, bool) {
	for _, s := range r.Sets {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Failures returns every failed layer of the run in bake order.
func (r *Report) Failures() []Failure {
	var out []Failure
	for _, s := range r.Sets {
		out = append(out, s.Failed...)
	}
	return out
}

// Skipped returns the render sets that were skipped.
func (r *Report) Skipped() []*SetResult {
	var out []*SetResult
	for _, s := range r.Sets {
		if s.Phase == PhaseSkipped {
			out = append(out, s)
		}
	}
	return out
}

// Duration is how long the run took.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
