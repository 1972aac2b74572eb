package renderset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddObjects_KeepsExistingChannel(t *testing.T) {
	c := newTestCollection(t, "A")
	require.NoError(t, c.AddObjects("A", map[string]UVChannel{"table": UVSecondary}))
	require.NoError(t, c.AddObjects("A", map[string]UVChannel{"table": UVPrimary, "chair": UVTertiary}))

	a, _ := c.Get("A")
	assert.Equal(t, map[string]UVChannel{"table": UVSecondary, "chair": UVTertiary}, a.Objects)
	assert.Equal(t, []string{"chair", "table"}, a.ObjectNames())
}

func TestAddObjects_RejectsBadChannel(t *testing.T) {
	c := newTestCollection(t, "A")
	assert.ErrorIs(t, c.AddObjects("A", map[string]UVChannel{"table": 7}), ErrOutOfRange)
}

func TestRemoveObjects_LeavesEmptyMap(t *testing.T) {
	c := newTestCollection(t, "A")
	require.NoError(t, c.AddObjects("A", map[string]UVChannel{"table": UVPrimary}))
	require.NoError(t, c.RemoveObjects("A", "table", "unknown"))

	a, _ := c.Get("A")
	assert.NotNil(t, a.Objects, "empty is distinct from absent")
	assert.Empty(t, a.Objects)
}

func TestSetObjectChannel(t *testing.T) {
	c := newTestCollection(t, "A")
	require.NoError(t, c.AddObjects("A", map[string]UVChannel{"table": UVPrimary}))

	require.NoError(t, c.SetObjectChannel("A", "table", UVTertiary))
	a, _ := c.Get("A")
	assert.Equal(t, UVTertiary, a.Objects["table"])

	assert.ErrorIs(t, c.SetObjectChannel("A", "ghost", UVPrimary), ErrObjectNotFound)
	assert.ErrorIs(t, c.SetObjectChannel("A", "table", 3), ErrOutOfRange)
}

func TestAddLayers_AppendsInOrder(t *testing.T) {
	c := newTestCollection(t, "A")
	require.NoError(t, c.AddLayers("A", []string{"Sun", "Sky"}, BlendAdditive))
	require.NoError(t, c.AddLayers("A", []string{"AO", "Sun"}, BlendMultiply))

	a, _ := c.Get("A")
	assert.Equal(t, []string{"Sun", "Sky", "AO"}, a.LayerNames())
	sun, _ := a.RenderLayers.Get("Sun")
	assert.Equal(t, BlendAdditive, sun, "existing layer keeps its blend")
	ao, _ := a.RenderLayers.Get("AO")
	assert.Equal(t, BlendMultiply, ao)
}

func TestAddLayerToAll(t *testing.T) {
	c := newTestCollection(t, "A", "B")
	require.NoError(t, c.AddLayers("A", []string{"Sun"}, BlendMultiply))

	changed := c.AddLayerToAll("Sun")
	assert.Equal(t, []string{"B"}, changed)

	a, _ := c.Get("A")
	mode, _ := a.RenderLayers.Get("Sun")
	assert.Equal(t, BlendMultiply, mode)
	b, _ := c.Get("B")
	mode, _ = b.RenderLayers.Get("Sun")
	assert.Equal(t, BlendAdditive, mode)
}

func TestRemoveLayers_PreservesOrder(t *testing.T) {
	c := newTestCollection(t, "A")
	require.NoError(t, c.AddLayers("A", []string{"L1", "L2", "L3", "L4"}, BlendAdditive))
	require.NoError(t, c.RemoveLayers("A", "L2"))

	a, _ := c.Get("A")
	assert.Equal(t, []string{"L1", "L3", "L4"}, a.LayerNames())
}

func TestMoveLayers(t *testing.T) {
	tests := []struct {
		name   string
		move   []string
		dir    Direction
		expect []string
	}{
		{name: "up one", move: []string{"C"}, dir: Up, expect: []string{"A", "C", "B", "D"}},
		{name: "down one", move: []string{"B"}, dir: Down, expect: []string{"A", "C", "B", "D"}},
		{name: "first up is a no-op", move: []string{"A"}, dir: Up, expect: []string{"A", "B", "C", "D"}},
		{name: "last down is a no-op", move: []string{"D"}, dir: Down, expect: []string{"A", "B", "C", "D"}},
		{name: "adjacent block up", move: []string{"C", "D"}, dir: Up, expect: []string{"A", "C", "D", "B"}},
		{name: "block at top stays", move: []string{"A", "B"}, dir: Up, expect: []string{"A", "B", "C", "D"}},
		{name: "split selection down", move: []string{"A", "C"}, dir: Down, expect: []string{"B", "A", "D", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCollection(t, "S")
			require.NoError(t, c.AddLayers("S", []string{"A", "B"}, BlendAdditive))
			require.NoError(t, c.AddLayers("S", []string{"C", "D"}, BlendMultiply))

			require.NoError(t, c.MoveLayers("S", tt.move, tt.dir))

			s, _ := c.Get("S")
			assert.Equal(t, tt.expect, s.LayerNames())
			for layer, want := range map[string]BlendMode{"A": BlendAdditive, "B": BlendAdditive, "C": BlendMultiply, "D": BlendMultiply} {
				got, _ := s.RenderLayers.Get(layer)
				assert.Equal(t, want, got, "blend of %s survives the move", layer)
			}
		})
	}
}

func TestMoveLayers_UnknownLayer(t *testing.T) {
	c := newTestCollection(t, "S")
	require.NoError(t, c.AddLayers("S", []string{"A"}, BlendAdditive))
	assert.ErrorIs(t, c.MoveLayers("S", []string{"Z"}, Up), ErrLayerNotFound)
}

func TestReorderLayers_PreservesBlendModes(t *testing.T) {
	c := newTestCollection(t, "S")
	layers := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		layers = append(layers, fmt.Sprintf("L%d", i))
	}
	for i, l := range layers {
		require.NoError(t, c.AddLayers("S", []string{l}, BlendMode(i%2)))
	}

	reversed := make([]string, len(layers))
	for i, l := range layers {
		reversed[len(layers)-1-i] = l
	}
	require.NoError(t, c.ReorderLayers("S", reversed))

	s, _ := c.Get("S")
	assert.Equal(t, reversed, s.LayerNames())
	for i, l := range layers {
		got, _ := s.RenderLayers.Get(l)
		assert.Equal(t, BlendMode(i%2), got)
	}
}

func TestSetBlend(t *testing.T) {
	c := newTestCollection(t, "S")
	require.NoError(t, c.AddLayers("S", []string{"A", "B"}, BlendAdditive))

	require.NoError(t, c.SetBlend("S", []string{"B"}, BlendMultiply))
	s, _ := c.Get("S")
	b, _ := s.RenderLayers.Get("B")
	assert.Equal(t, BlendMultiply, b)
	assert.Equal(t, []string{"A", "B"}, s.LayerNames())

	assert.ErrorIs(t, c.SetBlend("S", []string{"X"}, BlendMultiply), ErrLayerNotFound)
	assert.ErrorIs(t, c.SetBlend("S", []string{"A"}, 2), ErrOutOfRange)
}

func TestCopyLayersToAll(t *testing.T) {
	c := newTestCollection(t, "Src", "B", "C")
	require.NoError(t, c.AddLayers("Src", []string{"Sun", "AO"}, BlendAdditive))
	require.NoError(t, c.SetBlend("Src", []string{"AO"}, BlendMultiply))
	require.NoError(t, c.AddLayers("B", []string{"Old"}, BlendAdditive))

	require.NoError(t, c.CopyLayersToAll("Src"))

	src, _ := c.Get("Src")
	for _, name := range []string{"B", "C"} {
		s, _ := c.Get(name)
		assert.Equal(t, []string{"Sun", "AO"}, s.LayerNames())
		ao, _ := s.RenderLayers.Get("AO")
		assert.Equal(t, BlendMultiply, ao)
		assert.NotSame(t, src.RenderLayers, s.RenderLayers)
	}
}

func TestResolutionForSize(t *testing.T) {
	tests := []struct {
		size float64
		want int
	}{
		{size: 0, want: 64},
		{size: 80, want: 64},
		{size: 81, want: 128},
		{size: 301, want: 256},
		{size: 701, want: 512},
		{size: 1501, want: 1024},
		{size: 99999, want: 1024},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%g", tt.size), func(t *testing.T) {
			assert.Equal(t, tt.want, ResolutionForSize(tt.size).Pixels())
		})
	}
}

func TestAutoResolution(t *testing.T) {
	c := newTestCollection(t, "Big", "Small", "Empty")
	require.NoError(t, c.AddObjects("Big", map[string]UVChannel{"hall": 0, "stairs": 0}))
	require.NoError(t, c.AddObjects("Small", map[string]UVChannel{"cup": 0}))

	boxes := map[string]Bounds{
		"hall":   {Max: [3]float64{900, 900, 900}},
		"stairs": {Min: [3]float64{0, 0, 0}, Max: [3]float64{900, 900, 900}},
		"cup":    {Min: [3]float64{-5, -5, -5}, Max: [3]float64{5, 5, 5}},
	}
	got, err := c.AutoResolution(c.Names(), func(obj string) (Bounds, error) {
		return boxes[obj], nil
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]Resolution{"Big": 4, "Small": 0}, got)
	empty, _ := c.Get("Empty")
	assert.Equal(t, DefaultResolution, empty.Resolution)
}
