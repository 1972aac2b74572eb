package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lightbake/lbake/internal/bake"
)

type hookupOptions struct {
	pngPrefix string
	pngSuffix string
}

// NewHookupCmd creates the hookup command.
func NewHookupCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &hookupOptions{}

	c := &cobra.Command{
		Use:   "hookup",
		Short: "Link already exported light maps to materials without baking",
		Long: `Link already exported light maps to materials without baking.

Every render set whose image exists in textures/LM/ gets it assigned to the
materials of its objects. Locked render sets use the locked light map slot.
Use the same --png-prefix and --png-suffix the images were exported with.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()

			s, err := openSession(cfg)
			if err != nil {
				return err
			}
			col, err := s.load(ctx)
			if err != nil {
				return err
			}

			bopts := bake.DefaultOptions()
			bopts.Hookup = true
			bopts.ExportPrefix = cfg.Config.Bake.PNGPrefix
			if c.Flags().Changed("png-prefix") {
				bopts.ExportPrefix = opts.pngPrefix
			}
			bopts.ExportSuffix = cfg.Config.Bake.PNGSuffix
			if c.Flags().Changed("png-suffix") {
				bopts.ExportSuffix = opts.pngSuffix
			}
			if cfg.Config.Bake.ExportFormat != "" {
				bopts.ExportFormat = cfg.Config.Bake.ExportFormat
			}
			if cfg.Config.Bake.SettleDelay > 0 {
				bopts.SettleDelay = cfg.Config.Bake.SettleDelay
			}

			o := bake.New(bake.Deps{Scene: s.scene, FS: s.fs}, s.layout, bopts)
			report, runErr := o.RelinkExisting(ctx, col)
			if report != nil {
				if err := s.saveScene(); err != nil {
					return err
				}
				printBakeReport(report)
			}
			return runErr
		},
	}

	c.Flags().StringVar(&opts.pngPrefix, "png-prefix", "", "Prefix the images were exported with (default from bake.pngPrefix)")
	c.Flags().StringVar(&opts.pngSuffix, "png-suffix", "", "Suffix the images were exported with (default from bake.pngSuffix)")

	return c
}
