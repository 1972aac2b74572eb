package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show lbake version information.

Displays:
  - lbake version, commit, and build date
  - CUE SDK version (embedded in lbake)
  - whether the configured renderer and compositor commands are on PATH`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			tools := []version.ToolInfo{
				version.DetectTool("renderer", cfg.Config.Renderer.Command),
				version.DetectTool("compositor", cfg.Config.Compositor.Command),
			}
			output.Println(version.FullVersionString(version.Get(), tools))
			return nil
		},
	}
}
