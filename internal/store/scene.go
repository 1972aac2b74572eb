package store

import (
	"context"
	"fmt"

	"github.com/lightbake/lbake/internal/scene"
)

// Default location of the blob inside the scene.
const (
	DefaultNode      = "renderSets"
	DefaultAttribute = "notes"
)

// SceneBackend keeps the blob in a string attribute on a scene node.
type SceneBackend struct {
	Attrs     scene.Attributes
	Node      string
	Attribute string
}

// NewSceneBackend returns a backend for node.attribute, using the defaults
// for empty names.
func NewSceneBackend(attrs scene.Attributes, node, attribute string) *SceneBackend {
	if node == "" {
		node = DefaultNode
	}
	if attribute == "" {
		attribute = DefaultAttribute
	}
	return &SceneBackend{Attrs: attrs, Node: node, Attribute: attribute}
}

// Read implements Backend.
func (b *SceneBackend) Read(ctx context.Context) (string, bool, error) {
	ok, err := b.Attrs.AttributeExists(ctx, b.Node, b.Attribute)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	v, err := b.Attrs.GetAttribute(ctx, b.Node, b.Attribute)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Write implements Backend.
func (b *SceneBackend) Write(ctx context.Context, blob string) error {
	if err := b.Attrs.EnsureAttribute(ctx, b.Node, b.Attribute); err != nil {
		return fmt.Errorf("creating %s: %w", b.Describe(), err)
	}
	return b.Attrs.SetAttribute(ctx, b.Node, b.Attribute, blob)
}

// Describe implements Backend.
func (b *SceneBackend) Describe() string {
	return fmt.Sprintf("scene attribute %s.%s", b.Node, b.Attribute)
}
