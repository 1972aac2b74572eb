package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/lightbake/lbake/internal/config"
	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/kubernetes"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := os.Getenv(config.EnvConfig)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfigInit(t *testing.T) {
	p := newProject(t)
	path := os.Getenv(config.EnvConfig)

	p.mustRun("config", "init")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfigTemplate, string(data))

	err = p.run("config", "init")
	assert.ErrorIs(t, err, oerrors.ErrValidation)

	p.mustRun("config", "init", "--force")
	p.mustRun("config", "vet")
}

func TestConfigVet(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		p := newProject(t)
		err := p.run("config", "vet")
		assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
	})

	t.Run("out of range", func(t *testing.T) {
		p := newProject(t)
		writeConfig(t, "compositor:\n  colorDepth: 12\n")
		err := p.run("config", "vet")
		assert.ErrorIs(t, err, oerrors.ErrValidation)
	})

	t.Run("valid", func(t *testing.T) {
		p := newProject(t)
		writeConfig(t, "bake:\n  pngPrefix: Env\n")
		assert.NoError(t, p.run("config", "vet"))
	})
}

func TestUnreadableConfigOnlyBlocksStoreCommands(t *testing.T) {
	p := newProject(t)
	writeConfig(t, "store: [not, a, mapping\n")

	err := p.run("set", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrConfig)

	assert.NoError(t, p.run("version"))
}

func TestConfigFileSettingsApply(t *testing.T) {
	p := newProject(t)
	writeConfig(t, "bake:\n  pngPrefix: Env\n")
	require.NoError(t, afero.WriteFile(p.fs, exportPath("Env_Kitchen.png"), []byte("png"), 0o644))

	p.mustRun("set", "create", "Kitchen")
	p.mustRun("object", "add", "Kitchen", "chair")
	p.mustRun("hookup")

	assert.Equal(t, exportPath("Env_Kitchen.png"), p.scene().MaterialNodes["chairMat"].Attributes["Lightmap"])
}

func TestFileStoreBackend(t *testing.T) {
	p := newProject(t)
	writeConfig(t, "store:\n  backend: file\n  path: sets/renderSets.yaml\n")

	p.mustRun("set", "create", "Kitchen")

	data, err := afero.ReadFile(p.fs, filepath.Join(testRoot, "sets", "renderSets.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Kitchen")

	// Nothing was written into the scene.
	_, ok := p.scene().Nodes["renderSets"]
	assert.False(t, ok)
}

// fakeCluster swaps the kube client for a fake clientset whose kubeconfig
// context namespace is contextNS.
func fakeCluster(t *testing.T, contextNS string) *fake.Clientset {
	t.Helper()
	client := fake.NewClientset()
	orig := newKubeClient
	newKubeClient = func(opts kubernetes.ClientOptions) (*kubernetes.Client, error) {
		ns := opts.Namespace
		if ns == "" {
			ns = contextNS
		}
		return &kubernetes.Client{Clientset: client, Namespace: ns}, nil
	}
	t.Cleanup(func() { newKubeClient = orig })
	return client
}

func TestConfigMapStoreBackend(t *testing.T) {
	p := newProject(t)
	writeConfig(t, "store:\n  backend: configmap\n  namespace: studio\n  name: kitchen-sets\n")
	client := fakeCluster(t, "lighting")

	p.mustRun("set", "create", "Kitchen")
	p.mustRun("set", "create", "Hall")

	cm, err := client.CoreV1().ConfigMaps("studio").Get(context.Background(), "kitchen-sets", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, cm.Data["renderSets"], "Kitchen")
	assert.Contains(t, cm.Data["renderSets"], "Hall")
}

func TestConfigMapStoreBackend_ContextNamespace(t *testing.T) {
	p := newProject(t)
	writeConfig(t, "store:\n  backend: configmap\n")
	client := fakeCluster(t, "lighting")

	p.mustRun("set", "create", "Kitchen")

	cm, err := client.CoreV1().ConfigMaps("lighting").Get(context.Background(), "lbake-render-sets", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, cm.Data["renderSets"], "Kitchen")
}

func TestUnknownStoreBackend(t *testing.T) {
	p := newProject(t)
	writeConfig(t, "store:\n  backend: redis\n")

	err := p.run("set", "list")
	assert.ErrorIs(t, err, oerrors.ErrConfig)
}
