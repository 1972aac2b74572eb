package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lightbake/lbake/internal/config"
	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/output"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is created once by NewRootCmd and passed into every sub-command
// constructor.
type GlobalConfig struct {
	Config     *config.Config
	ConfigPath string

	// ConfigErr is set when the config file exists but could not be read.
	// Commands that depend on the file report it; config vet and version
	// still run.
	ConfigErr error

	ProjectRoot string
	ScenePath   string
	Verbose     bool
}

// requireConfig returns the config load error, if any.
func (g *GlobalConfig) requireConfig() error {
	if g.ConfigErr != nil {
		return fmt.Errorf("%w: %w", oerrors.ErrConfig, g.ConfigErr)
	}
	return nil
}

var (
	configFlag     string
	projectFlag    string
	sceneFlag      string
	verboseFlag    bool
	timestampsFlag bool
)

// NewRootCmd creates the root command for the lbake CLI.
func NewRootCmd() *cobra.Command {
	cfg := &GlobalConfig{Config: config.DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "lbake",
		Short: "Render set light map baking",
		Long: `lbake manages render sets and bakes them into light maps.

A render set groups scene objects that share one light map per render layer.
Each layer is baked, the results are stacked into a layered document, the
document is flattened to an image and the image is linked back onto the
objects' materials.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: LBAKE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "Project root directory (env: LBAKE_PROJECT)")
	rootCmd.PersistentFlags().StringVar(&sceneFlag, "scene", "", "Scene manifest, relative to the project root (env: LBAKE_SCENE)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(NewSetCmd(cfg))
	rootCmd.AddCommand(NewObjectCmd(cfg))
	rootCmd.AddCommand(NewLayerCmd(cfg))
	rootCmd.AddCommand(NewUVCmd(cfg))
	rootCmd.AddCommand(NewValidateCmd(cfg))
	rootCmd.AddCommand(NewBakeCmd(cfg))
	rootCmd.AddCommand(NewHookupCmd(cfg))
	rootCmd.AddCommand(NewConfigCmd(cfg))
	rootCmd.AddCommand(NewVersionCmd(cfg))

	return rootCmd
}

// initializeGlobals loads configuration, resolves the project paths and
// sets up logging.
func initializeGlobals(cmd *cobra.Command, cfg *GlobalConfig) error {
	cfg.Verbose = verboseFlag

	pathResult, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{
		FlagValue: configFlag,
	})
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory")
	}
	cfg.ConfigPath = pathResult.ConfigPath

	loader := config.NewLoader()
	loaded, err := loader.Load(cfg.ConfigPath)
	if err != nil {
		// Keep defaults so commands that don't need the file still work.
		cfg.ConfigErr = err
	} else {
		cfg.Config = loaded
	}

	// Precedence: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: verboseFlag}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if cfg.Config.Log.Timestamps != nil {
		logCfg.Timestamps = cfg.Config.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if cfg.ConfigErr != nil {
		output.Debug("config load error", "path", cfg.ConfigPath, "error", cfg.ConfigErr)
	}

	defaults := config.DefaultConfig()
	root := config.Resolve(config.ResolveOptions{
		Key:         "project.root",
		FlagValue:   projectFlag,
		EnvVar:      config.EnvProject,
		ConfigValue: loader.FileValue("project.root"),
		Default:     defaults.Project.Root,
	})
	scenePath := config.Resolve(config.ResolveOptions{
		Key:         "project.scene",
		FlagValue:   sceneFlag,
		EnvVar:      config.EnvScene,
		ConfigValue: loader.FileValue("project.scene"),
		Default:     defaults.Project.Scene,
	})

	rootDir, err := config.ExpandPath(root.Value)
	if err != nil {
		return fmt.Errorf("expanding project root: %w", err)
	}
	cfg.ProjectRoot = rootDir
	cfg.ScenePath = config.ScenePath(rootDir, scenePath.Value)
	cfg.Config.Project.Root = rootDir
	cfg.Config.Project.Scene = scenePath.Value

	if verboseFlag {
		config.LogResolvedValues([]config.ResolvedValue{
			{Key: "config", Value: pathResult.ConfigPath, Source: pathResult.Source, Shadowed: pathResult.Shadowed},
			root,
			scenePath,
		})
		output.Debug("initializing CLI",
			"config", cfg.ConfigPath,
			"configFile", loader.FileUsed(),
			"project", cfg.ProjectRoot,
			"scene", cfg.ScenePath,
			"store", cfg.Config.Store.Backend,
		)
	}

	return nil
}
