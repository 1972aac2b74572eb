package cmd

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/lightbake/lbake/internal/config"
	"github.com/lightbake/lbake/internal/renderset"
	"github.com/lightbake/lbake/internal/scene"
	"github.com/lightbake/lbake/internal/store"
)

const testRoot = "/proj"

var testScenePath = filepath.Join(testRoot, "scene.yaml")

// project is a scene manifest on an in-memory filesystem plus an empty
// config, driven through the root command.
type project struct {
	t  *testing.T
	fs afero.Fs
}

func newProject(t *testing.T) *project {
	t.Helper()

	fs := afero.NewMemMapFs()
	orig := appFs
	appFs = fs
	t.Cleanup(func() { appFs = orig })

	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvConfig, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(config.EnvProject, "")
	t.Setenv(config.EnvScene, "")

	require.NoError(t, fs.MkdirAll(testRoot, 0o755))
	require.NoError(t, testScene().Save(fs, testScenePath))
	return &project{t: t, fs: fs}
}

// testScene has three objects under a room group and two render layers
// besides the default one. lamp's current UV set is its second channel.
func testScene() *scene.Manifest {
	m := scene.NewManifest()
	m.Nodes["room"] = &scene.Node{}
	sizes := map[string]float64{"chair": 100, "table": 400, "lamp": 50}
	for obj, size := range sizes {
		m.Nodes[obj] = &scene.Node{
			Parent:       "room",
			UVSets:       []string{"map1"},
			CurrentUVSet: "map1",
			Bounds:       &scene.Bounds{Max: [3]float64{size, size, size}},
			Shapes:       []scene.Shape{{Name: obj + "Shape", Materials: []string{obj + "Mat"}}},
		}
		m.MaterialNodes[obj+"Mat"] = &scene.Material{Attributes: map[string]string{"Lightmap": ""}}
	}
	m.Nodes["lamp"].UVSets = []string{"map1", "uvSet"}
	m.Nodes["lamp"].CurrentUVSet = "uvSet"
	m.Nodes["empty"] = &scene.Node{}

	m.RenderLayerMembers["Sun"] = []string{"chair"}
	m.RenderLayerMembers["Shadow"] = nil
	return m
}

func (p *project) run(args ...string) error {
	p.t.Helper()
	root := NewRootCmd()
	root.SetArgs(append([]string{"--project", testRoot, "--timestamps=false"}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func (p *project) mustRun(args ...string) {
	p.t.Helper()
	require.NoError(p.t, p.run(args...))
}

func (p *project) scene() *scene.Manifest {
	p.t.Helper()
	m, err := scene.LoadManifest(p.fs, testScenePath)
	require.NoError(p.t, err)
	return m
}

// sets reads the collection back from the scene attribute it is stored in.
func (p *project) sets() *renderset.Collection {
	p.t.Helper()
	c, err := store.New(store.NewSceneBackend(p.scene(), "", "")).Load(context.Background())
	require.NoError(p.t, err)
	return c
}

func (p *project) set(name string) *renderset.RenderSet {
	p.t.Helper()
	s, ok := p.sets().Get(name)
	require.True(p.t, ok, "render set %s", name)
	return s
}
