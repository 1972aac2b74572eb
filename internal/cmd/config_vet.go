package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lightbake/lbake/internal/config"
	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the lbake configuration file.

Checks performed:
  1. Config file exists at resolved path
  2. Config file is valid YAML
  3. Every key is known and every value is in range

The config path is resolved using precedence:
  --config flag > LBAKE_CONFIG env > ~/.lbake/config.yaml

Examples:
  # Validate default configuration
  lbake config vet

  # Validate custom config path
  lbake config vet --config /path/to/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runConfigVet(cfg.ConfigPath)
		},
	}
}

func runConfigVet(path string) error {
	output.Debug("validating config", "path", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &oerrors.DetailError{
			Type:     "not found",
			Message:  "configuration file not found",
			Location: path,
			Hint:     "Run 'lbake config init' to create default configuration",
			Cause:    oerrors.ErrNotFound,
		}
	}

	v, err := config.NewValidator()
	if err != nil {
		return err
	}
	if err := v.ValidateFile(path); err != nil {
		return fmt.Errorf("%w: %s: %w", oerrors.ErrValidation, path, err)
	}

	output.Println(output.FormatCheckmark("Configuration is valid: " + path))
	return nil
}
