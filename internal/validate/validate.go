// Package validate reconciles render set membership against the live scene.
package validate

import (
	"context"
	"fmt"

	"github.com/lightbake/lbake/internal/renderset"
	"github.com/lightbake/lbake/internal/scene"
)

// Graph is the part of the scene graph validation reads.
type Graph interface {
	scene.Nodes
	scene.RenderLayers
}

// SetIssues lists the dangling references of one render set.
type SetIssues struct {
	Name         string   `json:"name"`
	Objects      []string `json:"objects,omitempty"`
	RenderLayers []string `json:"renderLayers,omitempty"`
}

// Count returns the number of invalid entries.
func (s SetIssues) Count() int {
	return len(s.Objects) + len(s.RenderLayers)
}

// Report groups invalid entries per render set, in collection order.
// Sets without issues are omitted.
type Report struct {
	Sets []SetIssues `json:"sets,omitempty"`
}

// Empty reports whether no invalid entries were found.
func (r *Report) Empty() bool {
	return r == nil || r.Count() == 0
}

// Count returns the total number of invalid entries.
func (r *Report) Count() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range r.Sets {
		n += s.Count()
	}
	return n
}

// SetNames returns the names of sets with issues.
func (r *Report) SetNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Sets))
	for _, s := range r.Sets {
		names = append(names, s.Name)
	}
	return names
}

// ForSet returns the issues recorded for name.
func (r *Report) ForSet(name string) (SetIssues, bool) {
	if r == nil {
		return SetIssues{}, false
	}
	for _, s := range r.Sets {
		if s.Name == name {
			return s, true
		}
	}
	return SetIssues{}, false
}

// Validator checks render set references against a scene graph.
type Validator struct {
	graph Graph
}

// New returns a Validator reading from g.
func New(g Graph) *Validator {
	return &Validator{graph: g}
}

// Validate checks every object and render layer of every render set.
// An object is valid when it exists and has at least one renderable mesh
// at or below it. A render layer is valid when the scene has it.
func (v *Validator) Validate(ctx context.Context, c *renderset.Collection) (*Report, error) {
	layers, err := v.sceneLayers(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for name, s := range c.All() {
		issues, err := v.validateSet(ctx, name, s, layers)
		if err != nil {
			return nil, err
		}
		if issues.Count() > 0 {
			report.Sets = append(report.Sets, issues)
		}
	}
	return report, nil
}

// ValidateSet checks a single render set.
func (v *Validator) ValidateSet(ctx context.Context, name string, s *renderset.RenderSet) (SetIssues, error) {
	layers, err := v.sceneLayers(ctx)
	if err != nil {
		return SetIssues{}, err
	}
	return v.validateSet(ctx, name, s, layers)
}

func (v *Validator) sceneLayers(ctx context.Context) (map[string]bool, error) {
	list, err := v.graph.RenderLayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing render layers: %w", err)
	}
	layers := make(map[string]bool, len(list))
	for _, l := range list {
		layers[l] = true
	}
	return layers, nil
}

func (v *Validator) validateSet(ctx context.Context, name string, s *renderset.RenderSet, layers map[string]bool) (SetIssues, error) {
	issues := SetIssues{Name: name}

	for _, obj := range s.ObjectNames() {
		ok, err := v.objectValid(ctx, obj)
		if err != nil {
			return issues, fmt.Errorf("checking %q in render set %q: %w", obj, name, err)
		}
		if !ok {
			issues.Objects = append(issues.Objects, obj)
		}
	}

	for _, layer := range s.LayerNames() {
		if !layers[layer] {
			issues.RenderLayers = append(issues.RenderLayers, layer)
		}
	}
	return issues, nil
}

func (v *Validator) objectValid(ctx context.Context, obj string) (bool, error) {
	exists, err := v.graph.Exists(ctx, obj)
	if err != nil || !exists {
		return false, err
	}
	meshes, err := v.graph.DescendantMeshes(ctx, obj)
	if err != nil {
		return false, err
	}
	return len(meshes) > 0, nil
}

// Repair returns a copy of c with exactly the entries named in report
// removed. Sets themselves are never removed. Repairing with an empty
// report returns an unchanged copy.
func Repair(c *renderset.Collection, report *Report) *renderset.Collection {
	out := c.Clone()
	if report.Empty() {
		return out
	}
	for _, issues := range report.Sets {
		if _, ok := out.Get(issues.Name); !ok {
			continue
		}
		_ = out.RemoveObjects(issues.Name, issues.Objects...)
		_ = out.RemoveLayers(issues.Name, issues.RenderLayers...)
	}
	return out
}
