package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lightbake/lbake/internal/config"
	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/output"
)

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(cfg *GlobalConfig) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Initialize the lbake configuration.

Writes every setting with its default value to the resolved config path
(~/.lbake/config.yaml unless --config or LBAKE_CONFIG say otherwise).

Examples:
  # Initialize configuration
  lbake config init

  # Overwrite existing configuration
  lbake config init --force`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runConfigInit(cfg.ConfigPath, force)
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return c
}

func runConfigInit(path string, force bool) error {
	if path == "" {
		var err error
		if path, err = config.GetConfigFile(); err != nil {
			return oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory")
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: path,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return oerrors.Wrap(oerrors.ErrConfig, "could not create "+filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate), 0o600); err != nil {
		return oerrors.Wrap(oerrors.ErrConfig, "could not write "+path)
	}

	output.Println(output.FormatCheckmark("Configuration written to " + path))
	output.Println("Validate with: lbake config vet")
	return nil
}
