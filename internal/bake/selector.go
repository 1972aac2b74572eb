package bake

import (
	"context"
	"errors"
)

// ErrDismissed is returned by a Selector when the user skips a render set.
var ErrDismissed = errors.New("layer selection dismissed")

// Selector picks which of a render set's layers to bake in this run. The
// stored configuration is never changed by a selection.
type Selector interface {
	SelectLayers(ctx context.Context, set string, layers []string) ([]string, error)
}

// AllLayers selects every layer.
type AllLayers struct{}

// SelectLayers implements Selector.
func (AllLayers) SelectLayers(_ context.Context, _ string, layers []string) ([]string, error) {
	return layers, nil
}

// ExcludeLayers drops the listed layers per render set.
type ExcludeLayers map[string][]string

// SelectLayers implements Selector.
func (e ExcludeLayers) SelectLayers(_ context.Context, set string, layers []string) ([]string, error) {
	drop := make(map[string]bool, len(e[set]))
	for _, l := range e[set] {
		drop[l] = true
	}
	out := make([]string, 0, len(layers))
	for _, l := range layers {
		if !drop[l] {
			out = append(out, l)
		}
	}
	return out, nil
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(ctx context.Context, set string, layers []string) ([]string, error)

// SelectLayers implements Selector.
func (f SelectorFunc) SelectLayers(ctx context.Context, set string, layers []string) ([]string, error) {
	return f(ctx, set, layers)
}

// inStoredOrder filters stored down to the selected names, keeping the
// stored order regardless of how the selector ordered them.
func inStoredOrder(stored, selected []string) []string {
	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[s] = true
	}
	out := make([]string, 0, len(selected))
	for _, s := range stored {
		if want[s] {
			out = append(out, s)
		}
	}
	return out
}
