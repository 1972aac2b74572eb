// Package uvset maps scene objects onto the three supported UV channels.
package uvset

import (
	"context"
	"errors"
	"fmt"

	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
	"github.com/lightbake/lbake/internal/scene"
)

// ErrNoUVSets is returned for objects that have no UV sets at all.
var ErrNoUVSets = errors.New("object has no UV sets")

// Graph is the part of the scene graph the resolver uses.
type Graph interface {
	scene.UVSets
	Exists(ctx context.Context, node string) (bool, error)
}

// Resolver reads and assigns per-object UV channels.
type Resolver struct {
	graph Graph
}

// New returns a Resolver over g.
func New(g Graph) *Resolver {
	return &Resolver{graph: g}
}

// CurrentChannel returns the channel matching the object's current UV set.
// An unrecognized current set is switched to the primary channel, which is
// then reported. Nodes without UV sets, such as groups, report the primary
// channel and are left untouched.
func (r *Resolver) CurrentChannel(ctx context.Context, object string) (renderset.UVChannel, error) {
	cur, err := r.graph.CurrentUVSet(ctx, object)
	if err != nil {
		return renderset.UVPrimary, fmt.Errorf("querying current UV set of %q: %w", object, err)
	}
	if cur == "" {
		return renderset.UVPrimary, nil
	}
	if ch, ok := renderset.ChannelForName(cur); ok {
		return ch, nil
	}

	output.Debug("unrecognized current UV set, switching to primary", "object", object, "uvSet", cur)
	if err := r.graph.SetCurrentUVSet(ctx, object, renderset.UVPrimary.Name()); err != nil {
		return renderset.UVPrimary, fmt.Errorf("resetting UV set of %q: %w", object, err)
	}
	return renderset.UVPrimary, nil
}

// AssignChannel makes ch the object's current UV set. Missing channels up
// to and including ch are created first, so the object never ends up with a
// gap in its channel list.
func (r *Resolver) AssignChannel(ctx context.Context, object string, ch renderset.UVChannel) error {
	if !ch.Valid() {
		return fmt.Errorf("UV channel %d: %w", int(ch), renderset.ErrOutOfRange)
	}
	if err := r.ensureChannels(ctx, object, ch); err != nil {
		return err
	}
	if err := r.graph.SetCurrentUVSet(ctx, object, ch.Name()); err != nil {
		return fmt.Errorf("setting UV set %s on %q: %w", ch.Name(), object, err)
	}
	return nil
}

func (r *Resolver) ensureChannels(ctx context.Context, object string, upTo renderset.UVChannel) error {
	existing, err := r.graph.UVSets(ctx, object)
	if err != nil {
		return fmt.Errorf("listing UV sets of %q: %w", object, err)
	}
	if len(existing) == 0 {
		return fmt.Errorf("%q: %w", object, ErrNoUVSets)
	}

	have := make(map[string]bool, len(existing))
	for _, s := range existing {
		have[s] = true
	}
	for ch := renderset.UVSecondary; ch <= upTo; ch++ {
		if have[ch.Name()] {
			continue
		}
		if err := r.graph.CreateUVSet(ctx, object, ch.Name()); err != nil {
			return fmt.Errorf("creating UV set %s on %q: %w", ch.Name(), object, err)
		}
		output.Debug("created UV set", "object", object, "uvSet", ch.Name())
	}
	return nil
}

// DominantChannel returns the most common channel among the set's objects.
// Objects are visited in name order and ties go to the channel seen first.
// A set without objects yields the primary channel.
func DominantChannel(s *renderset.RenderSet) renderset.UVChannel {
	counts := make(map[renderset.UVChannel]int)
	var order []renderset.UVChannel
	for _, obj := range s.ObjectNames() {
		ch := s.Objects[obj]
		if counts[ch] == 0 {
			order = append(order, ch)
		}
		counts[ch]++
	}

	best := renderset.UVPrimary
	bestCount := 0
	for _, ch := range order {
		if counts[ch] > bestCount {
			best, bestCount = ch, counts[ch]
		}
	}
	return best
}

// SyncResult reports what SyncAll touched.
type SyncResult struct {
	Updated []string
	Skipped []string
}

// SyncAll gives every existing object in every set all three UV channels
// and makes its stored channel current. Missing objects and objects without
// any UV sets are skipped with a warning.
func (r *Resolver) SyncAll(ctx context.Context, c *renderset.Collection) (SyncResult, error) {
	var result SyncResult
	for name, s := range c.All() {
		log := output.RenderSetLogger(name)
		for _, obj := range s.ObjectNames() {
			exists, err := r.graph.Exists(ctx, obj)
			if err != nil {
				return result, err
			}
			if !exists {
				result.Skipped = append(result.Skipped, obj)
				continue
			}

			if err := r.ensureChannels(ctx, obj, renderset.UVTertiary); err != nil {
				if errors.Is(err, ErrNoUVSets) {
					log.Warn("object has no UV sets, skipping", "object", obj)
					result.Skipped = append(result.Skipped, obj)
					continue
				}
				return result, err
			}

			ch := s.Objects[obj]
			if err := r.graph.SetCurrentUVSet(ctx, obj, ch.Name()); err != nil {
				return result, fmt.Errorf("setting UV set %s on %q: %w", ch.Name(), obj, err)
			}
			log.Debug("UV set synced", "object", obj, "uvSet", ch.Name())
			result.Updated = append(result.Updated, obj)
		}
	}
	return result, nil
}
