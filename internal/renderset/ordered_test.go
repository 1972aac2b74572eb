package renderset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOrderedMap_SetKeepsInsertionOrder(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("c", 1)
	m.Set("a", 2)
	m.Set("b", 3)
	m.Set("a", 4)

	assert.Equal(t, []string{"c", "a", "b"}, m.Keys())
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestOrderedMap_Delete(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	assert.True(t, m.Delete("b"))
	assert.False(t, m.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.False(t, m.Has("b"))
}

func TestOrderedMap_RenameKeyKeepsPosition(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	require.NoError(t, m.RenameKey("b", "z"))
	assert.Equal(t, []string{"a", "z", "c"}, m.Keys())
	v, _ := m.Get("z")
	assert.Equal(t, 2, v)

	assert.Error(t, m.RenameKey("a", "c"))
	assert.Error(t, m.RenameKey("missing", "q"))
}

func TestOrderedMap_Reorder(t *testing.T) {
	tests := []struct {
		name    string
		order   []string
		wantErr bool
	}{
		{name: "permutation", order: []string{"c", "a", "b"}},
		{name: "missing key", order: []string{"a", "b"}, wantErr: true},
		{name: "unknown key", order: []string{"a", "b", "x"}, wantErr: true},
		{name: "repeated key", order: []string{"a", "a", "b"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewOrderedMap[int]()
			m.Set("a", 1)
			m.Set("b", 2)
			m.Set("c", 3)

			err := m.Reorder(tt.order)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.order, m.Keys())
			for k, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
				got, _ := m.Get(k)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestOrderedMap_NilReceiver(t *testing.T) {
	var m *OrderedMap[int]
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Keys())
	assert.False(t, m.Has("a"))
	assert.Equal(t, -1, m.Index("a"))
	assert.Nil(t, m.Clone(nil))
	for range m.All() {
		t.Fatal("nil map should not iterate")
	}
}

func TestOrderedMap_YAMLPreservesOrder(t *testing.T) {
	var m OrderedMap[BlendMode]
	require.NoError(t, yaml.Unmarshal([]byte("zeta: 1\nalpha: 0\nmid: 1\n"), &m))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())

	out, err := yaml.Marshal(&m)
	require.NoError(t, err)
	assert.Equal(t, "zeta: 1\nalpha: 0\nmid: 1\n", string(out))
}

func TestOrderedMap_JSONPreservesOrder(t *testing.T) {
	m := NewOrderedMap[BlendMode]()
	m.Set("zeta", BlendMultiply)
	m.Set("alpha", BlendAdditive)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":0}`, string(out))
}
