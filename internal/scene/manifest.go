package scene

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/renderset"
)

// Manifest is a scene graph described by a YAML document. It is what the
// CLI operates on when no live scene connection is available.
type Manifest struct {
	Nodes              map[string]*Node     `json:"nodes,omitempty"`
	MaterialNodes      map[string]*Material `json:"materials,omitempty"`
	RenderLayerMembers map[string][]string  `json:"renderLayers,omitempty"`
	CurrentLayer       string               `json:"currentRenderLayer,omitempty"`

	mu sync.Mutex
}

// Node is a transform or plain node in the manifest.
type Node struct {
	Parent       string            `json:"parent,omitempty"`
	Bounds       *Bounds           `json:"bounds,omitempty"`
	UVSets       []string          `json:"uvSets,omitempty"`
	CurrentUVSet string            `json:"currentUVSet,omitempty"`
	Shapes       []Shape           `json:"shapes,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

// Shape is a mesh shape under a transform.
type Shape struct {
	Name         string   `json:"name"`
	Intermediate bool     `json:"intermediate,omitempty"`
	Materials    []string `json:"materials,omitempty"`
}

// Material is a shading node with shader flags and attributes.
type Material struct {
	Flags      map[string]bool   `json:"flags,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Bounds is the manifest form of a bounding box.
type Bounds struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		Nodes:              map[string]*Node{},
		MaterialNodes:      map[string]*Material{},
		RenderLayerMembers: map[string][]string{},
	}
}

// LoadManifest reads a manifest from path.
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError("scene manifest does not exist", path,
				"Pass --scene or set project.scene in the config file.")
		}
		return nil, fmt.Errorf("reading scene manifest: %w", err)
	}

	m := NewManifest()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing scene manifest %s: %w", path, err)
	}
	m.init()
	return m, nil
}

// Save writes the manifest to path.
func (m *Manifest) Save(fs afero.Fs, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding scene manifest: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing scene manifest: %w", err)
	}
	return nil
}

func (m *Manifest) init() {
	if m.Nodes == nil {
		m.Nodes = map[string]*Node{}
	}
	if m.MaterialNodes == nil {
		m.MaterialNodes = map[string]*Material{}
	}
	if m.RenderLayerMembers == nil {
		m.RenderLayerMembers = map[string][]string{}
	}
	for name, n := range m.Nodes {
		if n == nil {
			m.Nodes[name] = &Node{}
		}
	}
	for name, mat := range m.MaterialNodes {
		if mat == nil {
			m.MaterialNodes[name] = &Material{}
		}
	}
}

func (m *Manifest) node(name string) (*Node, error) {
	n, ok := m.Nodes[name]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", name, oerrors.ErrNotFound)
	}
	return n, nil
}

// Exists implements Nodes.
func (m *Manifest) Exists(_ context.Context, node string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Nodes[node]
	return ok, nil
}

// DescendantMeshes implements Nodes.
func (m *Manifest) DescendantMeshes(_ context.Context, node string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.node(node); err != nil {
		return nil, err
	}

	var meshes []string
	queue := []string{node}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, s := range m.Nodes[name].Shapes {
			if !s.Intermediate {
				meshes = append(meshes, s.Name)
			}
		}
		queue = append(queue, m.children(name)...)
	}
	return meshes, nil
}

func (m *Manifest) children(parent string) []string {
	var out []string
	for name, n := range m.Nodes {
		if n.Parent == parent {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Children implements Nodes.
func (m *Manifest) Children(_ context.Context, node string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.node(node); err != nil {
		return nil, err
	}
	return m.children(node), nil
}

// BoundingBox implements Nodes.
func (m *Manifest) BoundingBox(_ context.Context, node string) (renderset.Bounds, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.node(node)
	if err != nil {
		return renderset.Bounds{}, err
	}
	if n.Bounds == nil {
		return renderset.Bounds{}, nil
	}
	return renderset.Bounds{Min: n.Bounds.Min, Max: n.Bounds.Max}, nil
}

// UVSets implements UVSets.
func (m *Manifest) UVSets(_ context.Context, object string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.node(object)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), n.UVSets...), nil
}

// CurrentUVSet implements UVSets.
func (m *Manifest) CurrentUVSet(_ context.Context, object string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.node(object)
	if err != nil {
		return "", err
	}
	if n.CurrentUVSet == "" && len(n.UVSets) > 0 {
		return n.UVSets[0], nil
	}
	return n.CurrentUVSet, nil
}

// CreateUVSet implements UVSets.
func (m *Manifest) CreateUVSet(_ context.Context, object, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.node(object)
	if err != nil {
		return err
	}
	for _, s := range n.UVSets {
		if s == name {
			return fmt.Errorf("UV set %q already exists on %q", name, object)
		}
	}
	n.UVSets = append(n.UVSets, name)
	return nil
}

// SetCurrentUVSet implements UVSets.
func (m *Manifest) SetCurrentUVSet(_ context.Context, object, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.node(object)
	if err != nil {
		return err
	}
	for _, s := range n.UVSets {
		if s == name {
			n.CurrentUVSet = name
			return nil
		}
	}
	return fmt.Errorf("UV set %q on %q: %w", name, object, oerrors.ErrNotFound)
}

// RenderLayers implements RenderLayers. The default layer is always listed first.
func (m *Manifest) RenderLayers(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	layers := []string{DefaultRenderLayer}
	names := make([]string, 0, len(m.RenderLayerMembers))
	for name := range m.RenderLayerMembers {
		if name != DefaultRenderLayer {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append(layers, names...), nil
}

func (m *Manifest) hasLayer(layer string) bool {
	if layer == DefaultRenderLayer {
		return true
	}
	_, ok := m.RenderLayerMembers[layer]
	return ok
}

// LayerMembers implements RenderLayers.
func (m *Manifest) LayerMembers(_ context.Context, layer string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasLayer(layer) {
		return nil, fmt.Errorf("render layer %q: %w", layer, oerrors.ErrNotFound)
	}
	return append([]string(nil), m.RenderLayerMembers[layer]...), nil
}

// AddLayerMembers implements RenderLayers.
func (m *Manifest) AddLayerMembers(_ context.Context, layer string, objects []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasLayer(layer) {
		return fmt.Errorf("render layer %q: %w", layer, oerrors.ErrNotFound)
	}
	members := m.RenderLayerMembers[layer]
	have := make(map[string]bool, len(members))
	for _, o := range members {
		have[o] = true
	}
	for _, o := range objects {
		if !have[o] {
			members = append(members, o)
			have[o] = true
		}
	}
	m.RenderLayerMembers[layer] = members
	return nil
}

// CurrentRenderLayer implements RenderLayers.
func (m *Manifest) CurrentRenderLayer(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CurrentLayer == "" {
		return DefaultRenderLayer, nil
	}
	return m.CurrentLayer, nil
}

// SetCurrentRenderLayer implements RenderLayers.
func (m *Manifest) SetCurrentRenderLayer(_ context.Context, layer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasLayer(layer) {
		return fmt.Errorf("render layer %q: %w", layer, oerrors.ErrNotFound)
	}
	m.CurrentLayer = layer
	return nil
}

// Shapes implements Shading.
func (m *Manifest) Shapes(_ context.Context, object string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.node(object)
	if err != nil {
		return nil, err
	}
	shapes := make([]string, 0, len(n.Shapes))
	for _, s := range n.Shapes {
		shapes = append(shapes, s.Name)
	}
	return shapes, nil
}

// Materials implements Shading.
func (m *Manifest) Materials(_ context.Context, shape string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.Nodes {
		for _, s := range n.Shapes {
			if s.Name == shape {
				return append([]string(nil), s.Materials...), nil
			}
		}
	}
	return nil, fmt.Errorf("shape %q: %w", shape, oerrors.ErrNotFound)
}

// SetShaderFlag implements Shading.
func (m *Manifest) SetShaderFlag(_ context.Context, material, flag string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mat, ok := m.MaterialNodes[material]
	if !ok {
		return fmt.Errorf("material %q: %w", material, oerrors.ErrNotFound)
	}
	if mat.Flags == nil {
		mat.Flags = map[string]bool{}
	}
	mat.Flags[flag] = enabled
	return nil
}

// attributes returns the attribute map of a node or material.
func (m *Manifest) attributes(name string, create bool) (map[string]string, bool) {
	if n, ok := m.Nodes[name]; ok {
		if n.Attributes == nil && create {
			n.Attributes = map[string]string{}
		}
		return n.Attributes, true
	}
	if mat, ok := m.MaterialNodes[name]; ok {
		if mat.Attributes == nil && create {
			mat.Attributes = map[string]string{}
		}
		return mat.Attributes, true
	}
	return nil, false
}

// AttributeExists implements Attributes.
func (m *Manifest) AttributeExists(_ context.Context, node, attr string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attrs, ok := m.attributes(node, false)
	if !ok {
		return false, nil
	}
	_, ok = attrs[attr]
	return ok, nil
}

// GetAttribute implements Attributes.
func (m *Manifest) GetAttribute(_ context.Context, node, attr string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attrs, ok := m.attributes(node, false)
	if !ok {
		return "", fmt.Errorf("node %q: %w", node, oerrors.ErrNotFound)
	}
	v, ok := attrs[attr]
	if !ok {
		return "", fmt.Errorf("attribute %s.%s: %w", node, attr, oerrors.ErrNotFound)
	}
	return v, nil
}

// SetAttribute implements Attributes.
func (m *Manifest) SetAttribute(_ context.Context, node, attr, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	attrs, ok := m.attributes(node, true)
	if !ok {
		return fmt.Errorf("node %q: %w", node, oerrors.ErrNotFound)
	}
	if _, ok := attrs[attr]; !ok {
		return fmt.Errorf("attribute %s.%s: %w", node, attr, oerrors.ErrNotFound)
	}
	attrs[attr] = value
	return nil
}

// EnsureAttribute implements Attributes.
func (m *Manifest) EnsureAttribute(_ context.Context, node, attr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.attributes(node, false); !ok {
		m.Nodes[node] = &Node{}
	}
	attrs, _ := m.attributes(node, true)
	if _, ok := attrs[attr]; !ok {
		attrs[attr] = ""
	}
	return nil
}

var _ Graph = (*Manifest)(nil)
