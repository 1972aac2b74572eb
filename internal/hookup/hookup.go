// Package hookup points scene materials at exported lightmaps.
package hookup

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
	"github.com/lightbake/lbake/internal/scene"
)

// Shader flags and material attributes written by the hookup.
const (
	FlagUseLightmap       = "UseLightmap"
	FlagUseLockedLightmap = "UseLockedLightmap"
	AttrLockLM            = "LockLM"
)

// LightmapAttributes are the material attributes that receive the lightmap
// path for unlocked render sets, in the order they are tried.
var LightmapAttributes = []string{"LightmapMap", "Lightmap"}

// Assignments maps render set name to object to lightmap path.
type Assignments map[string]map[string]string

// Add records path for object in set. An object keeps its first path.
func (a Assignments) Add(set, object, path string) {
	objs, ok := a[set]
	if !ok {
		objs = map[string]string{}
		a[set] = objs
	}
	if _, ok := objs[object]; !ok {
		objs[object] = path
	}
}

// Len returns the number of object entries across all sets.
func (a Assignments) Len() int {
	n := 0
	for _, objs := range a {
		n += len(objs)
	}
	return n
}

// Sets returns the render set names in sorted order.
func (a Assignments) Sets() []string {
	return sortedKeys(a)
}

// Skip is an object the hookup could not resolve.
type Skip struct {
	Set    string
	Object string
	Reason string
}

// Change is one material edit.
type Change struct {
	Set      string
	Object   string
	Material string
	Target   string
	Value    string
}

// Result collects the changes and skips of one hookup pass.
type Result struct {
	Changes []Change
	Skipped []Skip
}

// Graph is the part of the scene graph the hookup uses.
type Graph interface {
	scene.Shading
	scene.Attributes
}

// Hookup edits materials through a scene graph.
type Hookup struct {
	graph Graph
}

// New returns a Hookup over g.
func New(g Graph) *Hookup {
	return &Hookup{graph: g}
}

// EnableLightmapUsage turns on the lightmap shader flag of every material
// reached from the assigned objects. Locked sets also get the locked flag.
func (h *Hookup) EnableLightmapUsage(ctx context.Context, a Assignments) (Result, error) {
	flags := func(set string) []string {
		if renderset.IsLocked(set) {
			return []string{FlagUseLightmap, FlagUseLockedLightmap}
		}
		return []string{FlagUseLightmap}
	}

	return h.each(ctx, a, func(set, object, material, _ string, res *Result) {
		log := output.RenderSetLogger(set)
		for _, flag := range flags(set) {
			if err := h.graph.SetShaderFlag(ctx, material, flag, true); err != nil {
				log.Warn("could not enable shader flag", "material", material, "flag", flag, "error", err)
				return
			}
			res.Changes = append(res.Changes, Change{Set: set, Object: object, Material: material, Target: flag, Value: "true"})
			log.Debug("shader flag enabled", "material", material, "flag", flag)
		}
	})
}

// AssignLightmapPaths writes each object's lightmap path onto its materials:
// LockLM for locked sets, otherwise every present attribute in
// LightmapAttributes. Missing attributes are left alone.
func (h *Hookup) AssignLightmapPaths(ctx context.Context, a Assignments) (Result, error) {
	return h.each(ctx, a, func(set, object, material, path string, res *Result) {
		log := output.RenderSetLogger(set)
		targets := LightmapAttributes
		if renderset.IsLocked(set) {
			targets = []string{AttrLockLM}
		}
		for _, attr := range targets {
			ok, err := h.graph.AttributeExists(ctx, material, attr)
			if err != nil {
				log.Warn("could not query attribute", "material", material, "attribute", attr, "error", err)
				continue
			}
			if !ok {
				continue
			}
			if err := h.graph.SetAttribute(ctx, material, attr, path); err != nil {
				log.Warn("could not set lightmap path", "material", material, "attribute", attr, "error", err)
				continue
			}
			res.Changes = append(res.Changes, Change{Set: set, Object: object, Material: material, Target: attr, Value: path})
			log.Info(fmt.Sprintf("%s.%s", material, attr), "path", path)
		}
	})
}

type visitFunc func(set, object, material, path string, res *Result)

func (h *Hookup) each(ctx context.Context, a Assignments, visit visitFunc) (Result, error) {
	var res Result
	if len(a) == 0 {
		output.Warn("no lightmaps to hook up")
		return res, nil
	}

	for _, set := range a.Sets() {
		objs := a[set]
		for _, object := range sortedKeys(objs) {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			materials, reason := h.materials(ctx, object)
			if reason != "" {
				output.RenderSetLogger(set).Warn("skipping object", "object", object, "reason", reason)
				res.Skipped = append(res.Skipped, Skip{Set: set, Object: object, Reason: reason})
				continue
			}
			for _, m := range materials {
				visit(set, object, m, objs[object], &res)
			}
		}
	}
	return res, nil
}

// materials resolves the object's single render shape and its materials.
// A non-empty reason means the object must be skipped.
func (h *Hookup) materials(ctx context.Context, object string) ([]string, string) {
	shapes, err := h.graph.Shapes(ctx, object)
	if err != nil || len(shapes) == 0 {
		return nil, "no shape found"
	}

	var candidates []string
	for _, s := range shapes {
		if !IsOrigShape(s) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) != 1 {
		return nil, fmt.Sprintf("expected one shape, found %d", len(candidates))
	}

	materials, err := h.graph.Materials(ctx, candidates[0])
	if err != nil || len(materials) == 0 {
		return nil, "no materials found"
	}
	return materials, ""
}

// IsOrigShape reports whether shape is an original shape left behind by
// deformation history, e.g. "chairShapeOrig" or "chairShapeOrig1".
func IsOrigShape(shape string) bool {
	return strings.HasSuffix(strings.TrimRight(shape, "0123456789"), "Orig")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
