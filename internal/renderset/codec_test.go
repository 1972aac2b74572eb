package renderset

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBlob = `Kitchen:
  resolution: 3
  colorMode: 1
  fillTextureSeams: 2.5
  lightMapPrefix: ENV
  renderMe: false
  layoutUVs: true
  objects:
    chair: 1
    table: 0
  renderLayers:
    Sun: 0
    AO: 1
    Bounce: 0
Hall:
  resolution: 4
  colorMode: 0
  fillTextureSeams: 3
  lightMapPrefix: BAKE
  renderMe: true
  layoutUVs: false
Attic:
  resolution: 0
  colorMode: 0
  fillTextureSeams: 3
  lightMapPrefix: BAKE
  renderMe: true
  layoutUVs: false
  objects: {}
  renderLayers: {}
`

func TestDecode_Sample(t *testing.T) {
	c, err := Decode([]byte(sampleBlob))
	require.NoError(t, err)

	assert.Equal(t, []string{"Kitchen", "Hall", "Attic"}, c.Names())

	k, _ := c.Get("Kitchen")
	assert.Equal(t, 512, k.Resolution.Pixels())
	assert.Equal(t, ColorOnlyLight, k.ColorMode)
	assert.Equal(t, 2.5, k.FillTextureSeams)
	assert.Equal(t, "ENV", k.LightMapPrefix)
	assert.False(t, k.RenderMe)
	assert.True(t, k.LayoutUVs)
	assert.Equal(t, map[string]UVChannel{"chair": UVSecondary, "table": UVPrimary}, k.Objects)
	assert.Equal(t, []string{"Sun", "AO", "Bounce"}, k.LayerNames())

	h, _ := c.Get("Hall")
	assert.Nil(t, h.Objects)
	assert.Nil(t, h.RenderLayers)

	a, _ := c.Get("Attic")
	assert.NotNil(t, a.Objects)
	assert.Empty(t, a.Objects)
	assert.NotNil(t, a.RenderLayers)
	assert.Equal(t, 0, a.RenderLayers.Len())
}

func TestRoundTrip(t *testing.T) {
	c, err := Decode([]byte(sampleBlob))
	require.NoError(t, err)

	out, err := Encode(c)
	require.NoError(t, err)
	assert.Equal(t, sampleBlob, string(out))

	again, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestDecode_BlankIsEmpty(t *testing.T) {
	for _, in := range []string{"", "   \n", "{}"} {
		c, err := Decode([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
	}
}

func TestDecode_MissingFieldsTakeDefaults(t *testing.T) {
	c, err := Decode([]byte("Kitchen:\n  resolution: 2\n  extra: ignored\n"))
	require.NoError(t, err)

	k, _ := c.Get("Kitchen")
	assert.Equal(t, Resolution(2), k.Resolution)
	assert.True(t, k.RenderMe, "renderMe defaults to true")
	assert.Equal(t, "BAKE", k.LightMapPrefix)
	assert.Equal(t, 3.0, k.FillTextureSeams)
}

func TestDecode_NullSetAndNullMembers(t *testing.T) {
	c, err := Decode([]byte("Kitchen:\nHall:\n  objects: null\n"))
	require.NoError(t, err)

	k, _ := c.Get("Kitchen")
	require.NotNil(t, k)
	assert.Equal(t, DefaultResolution, k.Resolution)

	h, _ := c.Get("Hall")
	assert.Nil(t, h.Objects)
}

func TestDecode_FlowStyleLegacyBlob(t *testing.T) {
	blob := `{'Kitchen': {'resolution': 2, 'renderMe': True, 'objects': {'table': 1}, 'renderLayers': {'Sun': 0, 'AO': 1}}}`

	c, err := Decode([]byte(blob))
	require.NoError(t, err)

	k, _ := c.Get("Kitchen")
	assert.Equal(t, Resolution(2), k.Resolution)
	assert.True(t, k.RenderMe)
	assert.Equal(t, UVSecondary, k.Objects["table"])
	assert.Equal(t, []string{"Sun", "AO"}, k.LayerNames())
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte("Kitchen: [1, 2"))
	assert.Error(t, err)

	_, err = Decode([]byte("Kitchen: 5\n"))
	assert.Error(t, err)
}

func TestEncode_Empty(t *testing.T) {
	out, err := Encode(NewCollection())
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}

func TestMarshalJSON_Ordered(t *testing.T) {
	c := newTestCollection(t, "Zed", "Alpha")
	require.NoError(t, c.AddLayers("Zed", []string{"Sun", "AO"}, BlendAdditive))

	out, err := json.Marshal(c)
	require.NoError(t, err)

	s := string(out)
	assert.Less(t, strings.Index(s, `"Zed"`), strings.Index(s, `"Alpha"`))
	assert.Less(t, strings.Index(s, `"Sun"`), strings.Index(s, `"AO"`))
	assert.Contains(t, s, `"renderMe":true`)
	assert.NotContains(t, s[strings.Index(s, `"Alpha"`):], "renderLayers")
}
