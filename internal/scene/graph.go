// Package scene defines what lbake needs from the scene graph and provides
// a YAML manifest implementation of it.
package scene

import (
	"context"

	"github.com/lightbake/lbake/internal/renderset"
)

// DefaultRenderLayer is the scene's base render layer.
const DefaultRenderLayer = "defaultRenderLayer"

// Nodes queries the node hierarchy.
type Nodes interface {
	// Exists reports whether a node with this name exists.
	Exists(ctx context.Context, node string) (bool, error)

	// DescendantMeshes returns the renderable (non-intermediate) mesh shapes
	// at or below node.
	DescendantMeshes(ctx context.Context, node string) ([]string, error)

	// Children returns the direct children of node.
	Children(ctx context.Context, node string) ([]string, error)

	// BoundingBox returns the world-space bounds of node.
	BoundingBox(ctx context.Context, node string) (renderset.Bounds, error)
}

// UVSets queries and edits per-object UV sets.
type UVSets interface {
	UVSets(ctx context.Context, object string) ([]string, error)
	CurrentUVSet(ctx context.Context, object string) (string, error)
	CreateUVSet(ctx context.Context, object, name string) error
	SetCurrentUVSet(ctx context.Context, object, name string) error
}

// RenderLayers queries and edits render layer membership.
type RenderLayers interface {
	RenderLayers(ctx context.Context) ([]string, error)
	LayerMembers(ctx context.Context, layer string) ([]string, error)
	AddLayerMembers(ctx context.Context, layer string, objects []string) error
	CurrentRenderLayer(ctx context.Context) (string, error)
	SetCurrentRenderLayer(ctx context.Context, layer string) error
}

// Shading walks from shapes to materials and toggles shader flags.
type Shading interface {
	// Shapes returns every shape under object, intermediate ones included.
	Shapes(ctx context.Context, object string) ([]string, error)
	Materials(ctx context.Context, shape string) ([]string, error)
	SetShaderFlag(ctx context.Context, material, flag string, enabled bool) error
}

// Attributes reads and writes string attributes on nodes and materials.
type Attributes interface {
	AttributeExists(ctx context.Context, node, attr string) (bool, error)
	GetAttribute(ctx context.Context, node, attr string) (string, error)
	SetAttribute(ctx context.Context, node, attr, value string) error

	// EnsureAttribute creates node and attr when missing.
	EnsureAttribute(ctx context.Context, node, attr string) error
}

// Graph is the full scene graph contract.
type Graph interface {
	Nodes
	UVSets
	RenderLayers
	Shading
	Attributes
}

// HasRenderLayer reports whether layer is one of the scene's render layers.
func HasRenderLayer(ctx context.Context, g RenderLayers, layer string) (bool, error) {
	layers, err := g.RenderLayers(ctx)
	if err != nil {
		return false, err
	}
	for _, l := range layers {
		if l == layer {
			return true, nil
		}
	}
	return false, nil
}
