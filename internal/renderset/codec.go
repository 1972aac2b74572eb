package renderset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record field names as they appear in the persisted blob.
const (
	fieldResolution       = "resolution"
	fieldColorMode        = "colorMode"
	fieldFillTextureSeams = "fillTextureSeams"
	fieldLightMapPrefix   = "lightMapPrefix"
	fieldRenderMe         = "renderMe"
	fieldLayoutUVs        = "layoutUVs"
	fieldObjects          = "objects"
	fieldRenderLayers     = "renderLayers"
)

// Decode parses a persisted blob. Blank input yields an empty collection.
// JSON and flow-style mappings are accepted since both are valid YAML.
func Decode(data []byte) (*Collection, error) {
	c := NewCollection()
	if len(bytes.TrimSpace(data)) == 0 {
		return c, nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing render sets: %w", err)
	}
	return c, nil
}

// Encode serializes the whole collection. Output is deterministic: sets and
// layers in stored order, objects sorted by name.
func Encode(c *Collection) ([]byte, error) {
	if c == nil || c.Len() == 0 {
		return []byte("{}\n"), nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding render sets: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler.
func (c *Collection) MarshalYAML() (interface{}, error) {
	return c.sets.MarshalYAML()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Collection) UnmarshalYAML(node *yaml.Node) error {
	var sets OrderedMap[*RenderSet]
	if err := sets.UnmarshalYAML(node); err != nil {
		return err
	}
	for name, s := range sets.All() {
		if s == nil {
			sets.Set(name, New())
		}
	}
	c.sets = sets
	return nil
}

// MarshalJSON encodes the collection as an ordered JSON object.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return c.sets.MarshalJSON()
}

// MarshalYAML implements yaml.Marshaler with a fixed field order.
func (s *RenderSet) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	add := func(key string, value interface{}) error {
		v := &yaml.Node{}
		if err := v.Encode(value); err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
		return nil
	}

	for _, f := range s.fields() {
		if err := add(f.key, f.value); err != nil {
			return nil, err
		}
	}
	if s.Objects != nil {
		objects := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, obj := range sortedKeys(s.Objects) {
			objects.Content = append(objects.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: obj},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", int(s.Objects[obj]))},
			)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fieldObjects}, objects)
	}
	if s.RenderLayers != nil {
		if err := add(fieldRenderLayers, s.RenderLayers); err != nil {
			return nil, err
		}
	}
	return node, nil
}

type field struct {
	key   string
	value interface{}
}

func (s *RenderSet) fields() []field {
	return []field{
		{fieldResolution, int(s.Resolution)},
		{fieldColorMode, int(s.ColorMode)},
		{fieldFillTextureSeams, s.FillTextureSeams},
		{fieldLightMapPrefix, s.LightMapPrefix},
		{fieldRenderMe, s.RenderMe},
		{fieldLayoutUVs, s.LayoutUVs},
	}
}

// UnmarshalYAML decodes a record. Missing scalar fields take their defaults
// and unknown fields are ignored. A null objects or renderLayers value is
// treated as absent.
func (s *RenderSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: render set must be a mapping", node.Line)
	}
	*s = *New()

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null" {
			continue
		}

		var err error
		switch key {
		case fieldResolution:
			err = value.Decode(&s.Resolution)
		case fieldColorMode:
			err = value.Decode(&s.ColorMode)
		case fieldFillTextureSeams:
			err = value.Decode(&s.FillTextureSeams)
		case fieldLightMapPrefix:
			err = value.Decode(&s.LightMapPrefix)
		case fieldRenderMe:
			err = value.Decode(&s.RenderMe)
		case fieldLayoutUVs:
			err = value.Decode(&s.LayoutUVs)
		case fieldObjects:
			objects := make(map[string]UVChannel)
			err = value.Decode(&objects)
			s.Objects = objects
		case fieldRenderLayers:
			layers := NewLayerStack()
			err = layers.UnmarshalYAML(value)
			s.RenderLayers = layers
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// MarshalJSON encodes the record with the same field names and order as
// the persisted blob.
func (s *RenderSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, value interface{}) error {
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", key)
		buf.Write(b)
		return nil
	}

	for _, f := range s.fields() {
		if err := write(f.key, f.value); err != nil {
			return nil, err
		}
	}
	if s.Objects != nil {
		if err := write(fieldObjects, s.Objects); err != nil {
			return nil, err
		}
	}
	if s.RenderLayers != nil {
		if err := write(fieldRenderLayers, s.RenderLayers); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary renders the record as one line for listings.
func (s *RenderSet) Summary() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%dpx", s.Resolution.Pixels()))
	parts = append(parts, fmt.Sprintf("%d objects", len(s.Objects)))
	parts = append(parts, fmt.Sprintf("%d layers", s.RenderLayers.Len()))
	if !s.RenderMe {
		parts = append(parts, "disabled")
	}
	return strings.Join(parts, ", ")
}
