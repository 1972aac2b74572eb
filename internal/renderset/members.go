package renderset

import (
	"fmt"
	"sort"
)

// Direction moves render layers within a stack.
type Direction int

const (
	Up Direction = iota
	Down
)

// AddObjects adds objects with their UV channels. Objects already in the
// set keep their stored channel.
func (c *Collection) AddObjects(set string, objects map[string]UVChannel) error {
	s, err := c.MustGet(set)
	if err != nil {
		return err
	}
	if s.Objects == nil {
		s.Objects = make(map[string]UVChannel, len(objects))
	}
	for _, obj := range sortedKeys(objects) {
		if _, ok := s.Objects[obj]; ok {
			continue
		}
		ch := objects[obj]
		if !ch.Valid() {
			return fmt.Errorf("%w: UV channel %d for %q", ErrOutOfRange, int(ch), obj)
		}
		s.Objects[obj] = ch
	}
	return nil
}

// RemoveObjects drops objects from the set. Unknown objects are ignored.
func (c *Collection) RemoveObjects(set string, objects ...string) error {
	s, err := c.MustGet(set)
	if err != nil {
		return err
	}
	for _, obj := range objects {
		delete(s.Objects, obj)
	}
	return nil
}

// SetObjectChannel records a new UV channel for an object already in the set.
func (c *Collection) SetObjectChannel(set, object string, ch UVChannel) error {
	s, err := c.MustGet(set)
	if err != nil {
		return err
	}
	if !ch.Valid() {
		return fmt.Errorf("%w: UV channel %d", ErrOutOfRange, int(ch))
	}
	if _, ok := s.Objects[object]; !ok {
		return fmt.Errorf("%w: %q in render set %q", ErrObjectNotFound, object, set)
	}
	s.Objects[object] = ch
	return nil
}

// AddLayers appends layers to the set's stack with blend. Layers already in
// the stack keep their position and blend mode.
func (c *Collection) AddLayers(set string, layers []string, blend BlendMode) error {
	s, err := c.MustGet(set)
	if err != nil {
		return err
	}
	if !blend.Valid() {
		return fmt.Errorf("%w: blend mode %d", ErrOutOfRange, int(blend))
	}
	if s.RenderLayers == nil {
		s.RenderLayers = NewLayerStack()
	}
	for _, layer := range layers {
		if !s.RenderLayers.Has(layer) {
			s.RenderLayers.Set(layer, blend)
		}
	}
	return nil
}

// AddLayerToAll appends layer as Additive to every set that lacks it and
// returns the names of the sets that changed.
func (c *Collection) AddLayerToAll(layer string) []string {
	var changed []string
	for name, s := range c.All() {
		if s.RenderLayers == nil {
			s.RenderLayers = NewLayerStack()
		}
		if s.RenderLayers.Has(layer) {
			continue
		}
		s.RenderLayers.Set(layer, BlendAdditive)
		changed = append(changed, name)
	}
	return changed
}

// RemoveLayers drops layers from the set's stack. Unknown layers are ignored.
func (c *Collection) RemoveLayers(set string, layers ...string) error {
	s, err := c.MustGet(set)
	if err != nil {
		return err
	}
	for _, layer := range layers {
		s.RenderLayers.Delete(layer)
	}
	return nil
}

// MoveLayers shifts each named layer one slot in dir. A layer already at
// the end it moves toward stays put, and a selected layer never jumps over
// another selected layer.
func (c *Collection) MoveLayers(set string, layers []string, dir Direction) error {
	s, err := c.MustGet(set)
	if err != nil {
		return err
	}
	if len(layers) == 0 {
		return nil
	}
	selected := make(map[string]bool, len(layers))
	for _, layer := range layers {
		if !s.RenderLayers.Has(layer) {
			return fmt.Errorf("%w: %q in render set %q", ErrLayerNotFound, layer, set)
		}
		selected[layer] = true
	}

	keys := s.RenderLayers.Keys()
	n := len(keys)
	if dir == Up {
		for i := 1; i < n; i++ {
			if selected[keys[i]] && !selected[keys[i-1]] {
				keys[i], keys[i-1] = keys[i-1], keys[i]
			}
		}
	} else {
		for i := n - 2; i >= 0; i-- {
			if selected[keys[i]] && !selected[keys[i+1]] {
				keys[i], keys[i+1] = keys[i+1], keys[i]
			}
		}
	}
	return s.RenderLayers.Reorder(keys)
}

// ReorderLayers replaces the stack order. order must list every layer once.
func (c *Collection) ReorderLayers(set string, order []string) error {
	s, err := c.MustGet(set)
	if err != nil {
		return err
	}
	if s.RenderLayers == nil {
		if len(order) == 0 {
			return nil
		}
		return fmt.Errorf("%w: render set %q has no layers", ErrLayerNotFound, set)
	}
	return s.RenderLayers.Reorder(order)
}

// SetBlend changes the blend mode of layers in the set.
func (c *Collection) SetBlend(set string, layers []string, blend BlendMode) error {
	s, err := c.MustGet(set)
	if err != nil {
		return err
	}
	if !blend.Valid() {
		return fmt.Errorf("%w: blend mode %d", ErrOutOfRange, int(blend))
	}
	for _, layer := range layers {
		if !s.RenderLayers.Has(layer) {
			return fmt.Errorf("%w: %q in render set %q", ErrLayerNotFound, layer, set)
		}
	}
	for _, layer := range layers {
		s.RenderLayers.Set(layer, blend)
	}
	return nil
}

// CopyLayersToAll replaces every other set's stack with a copy of source's.
func (c *Collection) CopyLayersToAll(source string) error {
	src, err := c.MustGet(source)
	if err != nil {
		return err
	}
	for name, s := range c.All() {
		if name == source {
			continue
		}
		s.RenderLayers = src.RenderLayers.Clone(nil)
		if s.RenderLayers == nil {
			s.RenderLayers = NewLayerStack()
		}
	}
	return nil
}

// Bounds is an axis-aligned world bounding box.
type Bounds struct {
	Min [3]float64
	Max [3]float64
}

// MeanExtent returns the average of the box's three edge lengths.
func (b Bounds) MeanExtent() float64 {
	return ((b.Max[0] - b.Min[0]) + (b.Max[1] - b.Min[1]) + (b.Max[2] - b.Min[2])) / 3
}

// ResolutionForSize picks a resolution from the summed mean extents of a
// set's objects.
func ResolutionForSize(size float64) Resolution {
	switch {
	case size > 1500:
		return 4
	case size > 700:
		return 3
	case size > 300:
		return 2
	case size > 80:
		return 1
	default:
		return 0
	}
}

// AutoResolution sets each named set's resolution from its objects' bounds.
// Sets without objects are left unchanged and not reported.
func (c *Collection) AutoResolution(names []string, bounds func(object string) (Bounds, error)) (map[string]Resolution, error) {
	result := make(map[string]Resolution)
	for _, name := range names {
		s, err := c.MustGet(name)
		if err != nil {
			return result, err
		}
		if len(s.Objects) == 0 {
			continue
		}
		var size float64
		for _, obj := range s.ObjectNames() {
			b, err := bounds(obj)
			if err != nil {
				return result, fmt.Errorf("bounds of %q: %w", obj, err)
			}
			size += b.MeanExtent()
		}
		s.Resolution = ResolutionForSize(size)
		result[name] = s.Resolution
	}
	return result, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
