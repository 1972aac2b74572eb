package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix for lbake configuration.
const envPrefix = "LBAKE"

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v    *viper.Viper
	file string
}

// NewLoader creates a new configuration loader with every default set, so
// each key can also be overridden by LBAKE_<SECTION>_<KEY>.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	return &Loader{v: v}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project.root", d.Project.Root)
	v.SetDefault("project.scene", d.Project.Scene)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.node", d.Store.Node)
	v.SetDefault("store.attribute", d.Store.Attribute)
	v.SetDefault("store.namespace", d.Store.Namespace)
	v.SetDefault("store.name", d.Store.Name)
	v.SetDefault("store.key", d.Store.Key)

	v.SetDefault("kubernetes.kubeconfig", d.Kubernetes.Kubeconfig)
	v.SetDefault("kubernetes.context", d.Kubernetes.Context)

	v.SetDefault("renderer.command", d.Renderer.Command)
	v.SetDefault("renderer.snapshotCommand", d.Renderer.SnapshotCommand)
	v.SetDefault("renderer.extension", d.Renderer.Extension)

	v.SetDefault("compositor.command", d.Compositor.Command)
	v.SetDefault("compositor.maxAttempts", d.Compositor.MaxAttempts)
	v.SetDefault("compositor.retryDelay", d.Compositor.RetryDelay)
	v.SetDefault("compositor.gamma", d.Compositor.Gamma)
	v.SetDefault("compositor.colorDepth", d.Compositor.ColorDepth)
	v.SetDefault("compositor.documentExtension", d.Compositor.DocumentExtension)

	v.SetDefault("bake.exportFormat", d.Bake.ExportFormat)
	v.SetDefault("bake.pngPrefix", d.Bake.PNGPrefix)
	v.SetDefault("bake.pngSuffix", d.Bake.PNGSuffix)
	v.SetDefault("bake.settleDelay", d.Bake.SettleDelay)
	v.SetDefault("bake.requireAllSelected", d.Bake.RequireAllSelected)
	v.SetDefault("bake.requireAllBaked", d.Bake.RequireAllBaked)
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// A missing file is not an error; defaults and env vars apply.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		l.file = expandedPath
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if l.v.IsSet("log.timestamps") {
		ts := l.v.GetBool("log.timestamps")
		cfg.Log.Timestamps = &ts
	}

	return &cfg, nil
}

// FileUsed returns the config file that was read, or "" when none was found.
func (l *Loader) FileUsed() string {
	return l.file
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(configFile string) (bool, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return false, err
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// FileValue returns the value of key as written in the config file, or ""
// when the file does not set it.
func (l *Loader) FileValue(key string) string {
	if !l.v.InConfig(key) {
		return ""
	}
	return l.v.GetString(key)
}
