// Package config provides configuration loading and management.
package config

import (
	"time"
)

// ProjectConfig locates the project being baked.
type ProjectConfig struct {
	// Root is the project directory; textures are written below it.
	// Env: LBAKE_PROJECT, Default: current directory
	Root string `mapstructure:"root" yaml:"root"`

	// Scene is the scene manifest path, relative to Root when not absolute.
	// Env: LBAKE_SCENE, Default: scene.yaml
	Scene string `mapstructure:"scene" yaml:"scene"`
}

// StoreConfig selects where the render set collection is persisted.
type StoreConfig struct {
	// Backend is one of "scene", "file" or "configmap".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the blob file for the file backend.
	Path string `mapstructure:"path" yaml:"path"`

	// Node and Attribute locate the blob for the scene backend.
	Node      string `mapstructure:"node" yaml:"node"`
	Attribute string `mapstructure:"attribute" yaml:"attribute"`

	// Namespace, Name and Key locate the blob for the configmap backend.
	// An empty Namespace means the kubeconfig context's namespace.
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
	Name      string `mapstructure:"name" yaml:"name"`
	Key       string `mapstructure:"key" yaml:"key"`
}

// KubernetesConfig contains Kubernetes-specific settings.
type KubernetesConfig struct {
	// Kubeconfig is the path to the kubeconfig file. Empty falls back to
	// LBAKE_KUBECONFIG, then KUBECONFIG, then ~/.kube/config.
	Kubeconfig string `mapstructure:"kubeconfig" yaml:"kubeconfig"`

	// Context is the Kubernetes context to use.
	// Env: LBAKE_CONTEXT, Default: current-context from kubeconfig
	Context string `mapstructure:"context" yaml:"context"`
}

// RendererConfig configures the external lightmap renderer.
type RendererConfig struct {
	// Command is the bake argv; each element is a Go template.
	Command []string `mapstructure:"command" yaml:"command"`

	// SnapshotCommand is the UV snapshot argv. Optional.
	SnapshotCommand []string `mapstructure:"snapshotCommand" yaml:"snapshotCommand"`

	// Extension of the per-layer lightmaps.
	Extension string `mapstructure:"extension" yaml:"extension"`
}

// CompositorConfig configures the compositing application bridge.
type CompositorConfig struct {
	Command           []string      `mapstructure:"command" yaml:"command"`
	MaxAttempts       int           `mapstructure:"maxAttempts" yaml:"maxAttempts"`
	RetryDelay        time.Duration `mapstructure:"retryDelay" yaml:"retryDelay"`
	Gamma             float64       `mapstructure:"gamma" yaml:"gamma"`
	ColorDepth        int           `mapstructure:"colorDepth" yaml:"colorDepth"`
	DocumentExtension string        `mapstructure:"documentExtension" yaml:"documentExtension"`
}

// BakeConfig holds bake run defaults. Flags override each field.
type BakeConfig struct {
	ExportFormat       string        `mapstructure:"exportFormat" yaml:"exportFormat"`
	PNGPrefix          string        `mapstructure:"pngPrefix" yaml:"pngPrefix"`
	PNGSuffix          string        `mapstructure:"pngSuffix" yaml:"pngSuffix"`
	SettleDelay        time.Duration `mapstructure:"settleDelay" yaml:"settleDelay"`
	RequireAllSelected bool          `mapstructure:"requireAllSelected" yaml:"requireAllSelected"`
	RequireAllBaked    bool          `mapstructure:"requireAllBaked" yaml:"requireAllBaked"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// Config represents the lbake configuration.
// Loaded from ~/.lbake/config.yaml, validated against embedded CUE schema.
type Config struct {
	Project    ProjectConfig    `mapstructure:"project" yaml:"project"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Kubernetes KubernetesConfig `mapstructure:"kubernetes" yaml:"kubernetes"`
	Renderer   RendererConfig   `mapstructure:"renderer" yaml:"renderer"`
	Compositor CompositorConfig `mapstructure:"compositor" yaml:"compositor"`
	Bake       BakeConfig       `mapstructure:"bake" yaml:"bake"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// Store backends.
const (
	BackendScene     = "scene"
	BackendFile      = "file"
	BackendConfigMap = "configmap"
)

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Root:  ".",
			Scene: "scene.yaml",
		},
		Store: StoreConfig{
			Backend:   BackendScene,
			Path:      "renderSets.yaml",
			Node:      "renderSets",
			Attribute: "notes",
			Name:      "lbake-render-sets",
			Key:       "renderSets",
		},
		Renderer: RendererConfig{
			Extension: "tif",
		},
		Compositor: CompositorConfig{
			MaxAttempts:       5,
			RetryDelay:        2 * time.Second,
			Gamma:             0.4545,
			ColorDepth:        32,
			DocumentExtension: "psd",
		},
		Bake: BakeConfig{
			ExportFormat:       "png",
			SettleDelay:        5 * time.Second,
			RequireAllSelected: true,
		},
	}
}
