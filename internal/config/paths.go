package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read directly, outside viper.
const (
	EnvConfig  = "LBAKE_CONFIG"
	EnvProject = "LBAKE_PROJECT"
	EnvScene   = "LBAKE_SCENE"
)

// DefaultConfigFile is ~/.lbake/config.yaml.
func DefaultConfigFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lbake", "config.yaml"), nil
}

// GetConfigFile returns $LBAKE_CONFIG, falling back to DefaultConfigFile.
func GetConfigFile() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	return DefaultConfigFile()
}

// ExpandPath expands a leading ~ or ~/ to the home directory. Other paths,
// including ~user forms, are returned unchanged.
func ExpandPath(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rest), nil
}

// ScenePath resolves a scene manifest path against the project root.
func ScenePath(root, scene string) string {
	if filepath.IsAbs(scene) {
		return scene
	}
	return filepath.Join(root, scene)
}
