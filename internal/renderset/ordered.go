package renderset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"gopkg.in/yaml.v3"
)

// OrderedMap is a string-keyed map that remembers insertion order.
// The zero value is ready to use.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in order.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil || m.values == nil {
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Index returns the position of key, or -1.
func (m *OrderedMap[V]) Index(key string) int {
	if m == nil {
		return -1
	}
	for i, k := range m.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Delete removes key and reports whether it was present.
func (m *OrderedMap[V]) Delete(key string) bool {
	i := m.Index(key)
	if i < 0 {
		return false
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	delete(m.values, key)
	return true
}

// RenameKey replaces oldKey with newKey in place, keeping the value and position.
func (m *OrderedMap[V]) RenameKey(oldKey, newKey string) error {
	i := m.Index(oldKey)
	if i < 0 {
		return fmt.Errorf("key %q not present", oldKey)
	}
	if oldKey == newKey {
		return nil
	}
	if m.Has(newKey) {
		return fmt.Errorf("key %q already present", newKey)
	}
	m.keys[i] = newKey
	m.values[newKey] = m.values[oldKey]
	delete(m.values, oldKey)
	return nil
}

// Reorder rearranges the entries to match order, which must name every key
// exactly once.
func (m *OrderedMap[V]) Reorder(order []string) error {
	if len(order) != m.Len() {
		return fmt.Errorf("reorder needs %d keys, got %d", m.Len(), len(order))
	}
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if !m.Has(k) {
			return fmt.Errorf("key %q not present", k)
		}
		if seen[k] {
			return fmt.Errorf("key %q listed twice", k)
		}
		seen[k] = true
	}
	m.keys = append([]string(nil), order...)
	return nil
}

// Swap exchanges the entries at positions i and j.
func (m *OrderedMap[V]) Swap(i, j int) {
	m.keys[i], m.keys[j] = m.keys[j], m.keys[i]
}

// All iterates over entries in order.
func (m *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns a copy, passing each value through cp.
func (m *OrderedMap[V]) Clone(cp func(V) V) *OrderedMap[V] {
	if m == nil {
		return nil
	}
	out := NewOrderedMap[V]()
	for k, v := range m.All() {
		if cp != nil {
			v = cp(v)
		}
		out.Set(k, v)
	}
	return out
}

// MarshalYAML encodes the map as a mapping node with keys in order.
func (m *OrderedMap[V]) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range m.All() {
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			valueNode,
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping node, keeping document order.
func (m *OrderedMap[V]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	m.keys = nil
	m.values = make(map[string]V, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v V
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("decoding %q: %w", node.Content[i].Value, err)
		}
		m.Set(node.Content[i].Value, v)
	}
	return nil
}

// MarshalJSON encodes the map as a JSON object with keys in order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for k, v := range m.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
