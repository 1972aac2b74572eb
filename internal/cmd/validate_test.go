package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/lightbake/lbake/internal/errors"
)

// staleProject has a Kitchen set that references chair and the Shadow
// layer, both of which are then removed from the scene.
func staleProject(t *testing.T) *project {
	t.Helper()
	p := newProject(t)
	p.mustRun("set", "create", "Kitchen", "Hall")
	p.mustRun("object", "add", "Kitchen", "chair", "table")
	p.mustRun("layer", "add", "Kitchen", "Sun", "Shadow")

	m := p.scene()
	delete(m.Nodes, "chair")
	delete(m.RenderLayerMembers, "Shadow")
	require.NoError(t, m.Save(p.fs, testScenePath))
	return p
}

func TestValidate_Clean(t *testing.T) {
	p := newProject(t)
	p.mustRun("set", "create", "Kitchen")
	p.mustRun("object", "add", "Kitchen", "chair")

	assert.NoError(t, p.run("validate"))
}

func TestValidate_StaleReferences(t *testing.T) {
	p := staleProject(t)

	err := p.run("validate", "--diff")
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrStaleReferences)
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))

	// Reporting leaves the stored collection untouched.
	rs := p.set("Kitchen")
	assert.Contains(t, rs.Objects, "chair")
	assert.Equal(t, []string{"Sun", "Shadow"}, rs.LayerNames())
}

func TestValidate_Repair(t *testing.T) {
	p := staleProject(t)

	require.NoError(t, p.run("validate", "--repair"))

	rs := p.set("Kitchen")
	assert.Equal(t, []string{"table"}, rs.ObjectNames())
	assert.Equal(t, []string{"Sun"}, rs.LayerNames())
	assert.Equal(t, []string{"Kitchen", "Hall"}, p.sets().Names())

	assert.NoError(t, p.run("validate"))
}
