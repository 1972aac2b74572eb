package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightbake/lbake/internal/renderset"
)

func TestSchemaChecker_ValidCollection(t *testing.T) {
	sc, err := NewSchemaChecker()
	require.NoError(t, err)

	c := renderset.NewCollection()
	_, err = c.Create("Kitchen")
	require.NoError(t, err)
	require.NoError(t, c.AddObjects("Kitchen", map[string]renderset.UVChannel{"table": 2}))
	require.NoError(t, c.AddLayers("Kitchen", []string{"Sun"}, renderset.BlendMultiply))

	assert.NoError(t, sc.Check(c))
}

func TestSchemaChecker_OutOfRange(t *testing.T) {
	sc, err := NewSchemaChecker()
	require.NoError(t, err)

	c, err := renderset.Decode([]byte(`
Kitchen:
  resolution: 9
  fillTextureSeams: 12
  renderLayers:
    Sun: 3
Hall:
  resolution: 1
`))
	require.NoError(t, err)

	err = sc.Check(c)
	require.Error(t, err)

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	fields := make([]string, 0, len(fe))
	for _, e := range fe {
		assert.Equal(t, "Kitchen", e.Set)
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "resolution")
	assert.Contains(t, fields, "fillTextureSeams")
	assert.Contains(t, fields, "renderLayers.Sun")
	assert.Contains(t, err.Error(), "Kitchen.resolution")
}
