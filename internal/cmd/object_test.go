package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/renderset"
)

func TestObjectAdd_RecordsCurrentUVSet(t *testing.T) {
	p := newProject(t)
	p.mustRun("set", "create", "Kitchen")
	p.mustRun("object", "add", "Kitchen", "chair", "lamp")

	assert.Equal(t, map[string]renderset.UVChannel{
		"chair": renderset.UVPrimary,
		"lamp":  renderset.UVSecondary,
	}, p.set("Kitchen").Objects)
}

func TestObjectAdd_KeepsStoredChannel(t *testing.T) {
	p := newProject(t)
	p.mustRun("set", "create", "Kitchen")
	p.mustRun("object", "add", "Kitchen", "chair")
	p.mustRun("object", "uv", "Kitchen", "uvSet1", "chair")

	p.mustRun("object", "add", "Kitchen", "chair", "table")

	objs := p.set("Kitchen").Objects
	assert.Equal(t, renderset.UVTertiary, objs["chair"])
	assert.Equal(t, renderset.UVPrimary, objs["table"])
}

func TestObjectAdd_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		object string
	}{
		{"not in scene", "sofa"},
		{"no meshes", "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(t)
			p.mustRun("set", "create", "Kitchen")

			err := p.run("object", "add", "Kitchen", "chair", tt.object)
			require.Error(t, err)
			assert.ErrorIs(t, err, oerrors.ErrNotFound)
			assert.Nil(t, p.set("Kitchen").Objects, "nothing was added")
		})
	}
}

func TestObjectAdd_GroupWithMeshesBelow(t *testing.T) {
	p := newProject(t)
	p.mustRun("set", "create", "Kitchen")
	p.mustRun("object", "add", "Kitchen", "room")

	assert.Equal(t, renderset.UVPrimary, p.set("Kitchen").Objects["room"])
	assert.Empty(t, p.scene().Nodes["room"].UVSets, "group left without UV sets")
}

func TestObjectRemove(t *testing.T) {
	p := newProject(t)
	p.mustRun("set", "create", "Kitchen")
	p.mustRun("object", "add", "Kitchen", "chair", "table")
	p.mustRun("object", "remove", "Kitchen", "chair", "sofa")

	assert.Equal(t, []string{"table"}, p.set("Kitchen").ObjectNames())
}

func TestObjectUV_UpdatesSceneAndStore(t *testing.T) {
	p := newProject(t)
	p.mustRun("set", "create", "Kitchen")
	p.mustRun("object", "add", "Kitchen", "table")

	p.mustRun("object", "uv", "Kitchen", "uvSet1", "table", "sofa")

	assert.Equal(t, renderset.UVTertiary, p.set("Kitchen").Objects["table"])
	table := p.scene().Nodes["table"]
	assert.Equal(t, []string{"map1", "uvSet", "uvSet1"}, table.UVSets)
	assert.Equal(t, "uvSet1", table.CurrentUVSet)
}

func TestObjectUV_NotInSet(t *testing.T) {
	p := newProject(t)
	p.mustRun("set", "create", "Kitchen")

	err := p.run("object", "uv", "Kitchen", "uvSet", "chair")
	assert.ErrorIs(t, err, renderset.ErrObjectNotFound)
	assert.Equal(t, "map1", p.scene().Nodes["chair"].CurrentUVSet)
}

func TestObjectUV_UnknownChannel(t *testing.T) {
	p := newProject(t)
	p.mustRun("set", "create", "Kitchen")
	p.mustRun("object", "add", "Kitchen", "chair")

	err := p.run("object", "uv", "Kitchen", "uvSet7", "chair")
	assert.ErrorIs(t, err, oerrors.ErrValidation)
}

func TestUVSync(t *testing.T) {
	p := newProject(t)
	p.mustRun("set", "create", "Kitchen")
	p.mustRun("object", "add", "Kitchen", "chair", "lamp")

	// Someone switched lamp back to map1 in the scene.
	m := p.scene()
	m.Nodes["lamp"].CurrentUVSet = "map1"
	require.NoError(t, m.Save(p.fs, testScenePath))

	p.mustRun("uv", "sync")

	got := p.scene()
	assert.Equal(t, "uvSet", got.Nodes["lamp"].CurrentUVSet)
	assert.Equal(t, []string{"map1", "uvSet", "uvSet1"}, got.Nodes["chair"].UVSets)
	assert.Equal(t, "map1", got.Nodes["chair"].CurrentUVSet)
}
