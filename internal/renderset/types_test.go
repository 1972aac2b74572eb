package renderset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in      string
		want    Resolution
		wantErr bool
	}{
		{in: "1024", want: 4},
		{in: "64", want: 0},
		{in: "2048", want: 5},
		{in: "3", want: 3},
		{in: " 512 ", want: 3},
		{in: "6", wantErr: true},
		{in: "100", wantErr: true},
		{in: "big", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResolution(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBlendMode(t *testing.T) {
	m, err := ParseBlendMode("multiply")
	require.NoError(t, err)
	assert.Equal(t, BlendMultiply, m)
	assert.Equal(t, "Additive", BlendAdditive.String())

	_, err = ParseBlendMode("screen")
	assert.Error(t, err)
}

func TestUVChannels(t *testing.T) {
	assert.Equal(t, "map1", UVPrimary.Name())
	assert.Equal(t, "uvSet", UVSecondary.Name())
	assert.Equal(t, "uvSet1", UVTertiary.Name())
	assert.Equal(t, "", UVChannel(5).Name())

	ch, ok := ChannelForName("uvSet1")
	assert.True(t, ok)
	assert.Equal(t, UVTertiary, ch)

	_, ok = ChannelForName("lightmapUV")
	assert.False(t, ok)

	parsed, err := ParseUVChannel("1")
	require.NoError(t, err)
	assert.Equal(t, UVSecondary, parsed)
	_, err = ParseUVChannel("3")
	assert.Error(t, err)
}

func TestColorModeStrings(t *testing.T) {
	assert.Equal(t, "Occlusion", ColorOcclusion.String())
	assert.False(t, ColorMode(4).Valid())
}

func TestParseColorMode(t *testing.T) {
	m, err := ParseColorMode("only light")
	require.NoError(t, err)
	assert.Equal(t, ColorOnlyLight, m)

	m, err = ParseColorMode("3")
	require.NoError(t, err)
	assert.Equal(t, ColorOcclusion, m)

	_, err = ParseColorMode("4")
	assert.Error(t, err)
}
