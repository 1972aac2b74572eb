package renderset

import (
	"fmt"
	"iter"
	"sort"
	"strings"
)

// Collection is the ordered set of render sets keyed by unique name.
type Collection struct {
	sets OrderedMap[*RenderSet]
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Len returns the number of render sets.
func (c *Collection) Len() int {
	return c.sets.Len()
}

// Names returns render set names in collection order.
func (c *Collection) Names() []string {
	return c.sets.Keys()
}

// Get returns the named render set.
func (c *Collection) Get(name string) (*RenderSet, bool) {
	return c.sets.Get(name)
}

// MustGet returns the named render set or ErrSetNotFound.
func (c *Collection) MustGet(name string) (*RenderSet, error) {
	s, ok := c.sets.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSetNotFound, name)
	}
	return s, nil
}

// All iterates render sets in collection order.
func (c *Collection) All() iter.Seq2[string, *RenderSet] {
	return c.sets.All()
}

// Put stores s under name, appending new names.
func (c *Collection) Put(name string, s *RenderSet) {
	c.sets.Set(name, s)
}

// Clone returns a deep copy.
func (c *Collection) Clone() *Collection {
	out := NewCollection()
	for name, s := range c.All() {
		out.Put(name, s.Clone())
	}
	return out
}

func (c *Collection) checkNewName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if c.sets.Has(name) {
		return "", fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return name, nil
}

// Create adds a render set with default settings.
func (c *Collection) Create(name string) (*RenderSet, error) {
	name, err := c.checkNewName(name)
	if err != nil {
		return nil, err
	}
	s := New()
	c.sets.Set(name, s)
	return s, nil
}

// Delete removes the named render sets. Nothing is removed if any name is unknown.
func (c *Collection) Delete(names ...string) error {
	for _, name := range names {
		if !c.sets.Has(name) {
			return fmt.Errorf("%w: %q", ErrSetNotFound, name)
		}
	}
	for _, name := range names {
		c.sets.Delete(name)
	}
	return nil
}

// Rename moves a render set to a new key, keeping its value and position.
func (c *Collection) Rename(oldName, newName string) error {
	if !c.sets.Has(oldName) {
		return fmt.Errorf("%w: %q", ErrSetNotFound, oldName)
	}
	name, err := c.checkNewName(newName)
	if err != nil {
		return err
	}
	return c.sets.RenameKey(oldName, name)
}

// Duplicate copies each named set to name+suffix. Targets that already
// exist are returned in skipped and left untouched.
func (c *Collection) Duplicate(names []string, suffix string) (created, skipped []string, err error) {
	if strings.TrimSpace(suffix) == "" {
		return nil, nil, fmt.Errorf("%w: duplicate suffix is empty", ErrEmptyName)
	}
	for _, name := range names {
		s, err := c.MustGet(name)
		if err != nil {
			return created, skipped, err
		}
		target := name + suffix
		if c.sets.Has(target) {
			skipped = append(skipped, target)
			continue
		}
		c.sets.Set(target, s.Clone())
		created = append(created, target)
	}
	return created, skipped, nil
}

// AddLockedSuffix renames each named set to name+LockedSuffix in place.
// Sets that are already locked, or whose target name is taken, keep their
// name and are returned in skipped.
func (c *Collection) AddLockedSuffix(names []string) (renamed, skipped []string, err error) {
	for _, name := range names {
		if !c.sets.Has(name) {
			return renamed, skipped, fmt.Errorf("%w: %q", ErrSetNotFound, name)
		}
		target := name + LockedSuffix
		if IsLocked(name) || c.sets.Has(target) {
			skipped = append(skipped, name)
			continue
		}
		if err := c.sets.RenameKey(name, target); err != nil {
			return renamed, skipped, err
		}
		renamed = append(renamed, target)
	}
	return renamed, skipped, nil
}

// Sort orders render sets by name.
func (c *Collection) Sort() {
	names := c.Names()
	sort.Strings(names)
	_ = c.sets.Reorder(names)
}

// update applies fn to each named set after checking they all exist.
func (c *Collection) update(names []string, fn func(*RenderSet) error) error {
	sets := make([]*RenderSet, 0, len(names))
	for _, name := range names {
		s, err := c.MustGet(name)
		if err != nil {
			return err
		}
		sets = append(sets, s)
	}
	for _, s := range sets {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderMe enables or disables the named sets.
func (c *Collection) SetRenderMe(names []string, enabled bool) error {
	return c.update(names, func(s *RenderSet) error {
		s.RenderMe = enabled
		return nil
	})
}

// ToggleAllRenderMe flips every set to the opposite of the first set's state
// and returns the new state.
func (c *Collection) ToggleAllRenderMe() bool {
	names := c.Names()
	if len(names) == 0 {
		return false
	}
	first, _ := c.Get(names[0])
	state := !first.RenderMe
	for _, s := range c.All() {
		s.RenderMe = state
	}
	return state
}

// SetResolution sets the resolution of the named sets.
func (c *Collection) SetResolution(names []string, r Resolution) error {
	if !r.Valid() {
		return fmt.Errorf("%w: resolution index %d", ErrOutOfRange, int(r))
	}
	return c.update(names, func(s *RenderSet) error {
		s.Resolution = r
		return nil
	})
}

// SetColorMode sets the color mode of the named sets.
func (c *Collection) SetColorMode(names []string, m ColorMode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: color mode %d", ErrOutOfRange, int(m))
	}
	return c.update(names, func(s *RenderSet) error {
		s.ColorMode = m
		return nil
	})
}

// SetFillTextureSeams sets the texel padding of the named sets.
func (c *Collection) SetFillTextureSeams(names []string, v float64) error {
	if v < 0 || v > MaxFillTextureSeams {
		return fmt.Errorf("%w: fillTextureSeams %g not in [0,%g]", ErrOutOfRange, v, MaxFillTextureSeams)
	}
	return c.update(names, func(s *RenderSet) error {
		s.FillTextureSeams = v
		return nil
	})
}

// SetLightMapPrefix sets the artifact prefix of the named sets.
func (c *Collection) SetLightMapPrefix(names []string, prefix string) error {
	return c.update(names, func(s *RenderSet) error {
		s.LightMapPrefix = prefix
		return nil
	})
}

// SetLayoutUVs toggles automatic UV layout for the named sets.
func (c *Collection) SetLayoutUVs(names []string, enabled bool) error {
	return c.update(names, func(s *RenderSet) error {
		s.LayoutUVs = enabled
		return nil
	})
}
