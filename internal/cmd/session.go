package cmd

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/lightbake/lbake/internal/bake"
	"github.com/lightbake/lbake/internal/config"
	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/kubernetes"
	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
	"github.com/lightbake/lbake/internal/scene"
	"github.com/lightbake/lbake/internal/store"
)

// appFs is the filesystem every command reads and writes through.
var appFs afero.Fs = afero.NewOsFs()

// newKubeClient builds the client for the configmap store backend.
// Swapped in tests.
var newKubeClient = kubernetes.NewClient

// session is the scene and render set store one command works against.
type session struct {
	cfg    *GlobalConfig
	fs     afero.Fs
	scene  *scene.Manifest
	store  *store.Store
	layout bake.Layout
}

func openSession(cfg *GlobalConfig) (*session, error) {
	if err := cfg.requireConfig(); err != nil {
		return nil, err
	}

	m, err := scene.LoadManifest(appFs, cfg.ScenePath)
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(cfg, m)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:    cfg,
		fs:     appFs,
		scene:  m,
		store:  store.New(backend),
		layout: bake.NewLayout(cfg.ProjectRoot),
	}, nil
}

func newBackend(cfg *GlobalConfig, m *scene.Manifest) (store.Backend, error) {
	sc := cfg.Config.Store
	switch sc.Backend {
	case "", config.BackendScene:
		return store.NewSceneBackend(m, sc.Node, sc.Attribute), nil
	case config.BackendFile:
		path := sc.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.ProjectRoot, path)
		}
		return store.NewFileBackend(appFs, path), nil
	case config.BackendConfigMap:
		client, err := newKubeClient(kubernetes.ClientOptions{
			Kubeconfig: cfg.Config.Kubernetes.Kubeconfig,
			Context:    cfg.Config.Kubernetes.Context,
			Namespace:  sc.Namespace,
		})
		if err != nil {
			return nil, err
		}
		output.Debug("using ConfigMap store", "namespace", client.Namespace, "context", client.Context)
		return store.NewConfigMapBackend(client.Clientset, client.Namespace, sc.Name, sc.Key), nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", oerrors.ErrConfig, sc.Backend)
	}
}

func (s *session) load(ctx context.Context) (*renderset.Collection, error) {
	return s.store.Load(ctx)
}

// update applies fn to a freshly loaded collection, saves it and then
// saves the scene manifest, which the scene backend and most mutations
// write into.
func (s *session) update(ctx context.Context, fn func(*renderset.Collection) error) (*renderset.Collection, error) {
	c, err := s.store.Update(ctx, fn)
	if err != nil {
		return nil, err
	}
	if err := s.saveScene(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *session) saveScene() error {
	return s.scene.Save(s.fs, s.cfg.ScenePath)
}

func sortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
