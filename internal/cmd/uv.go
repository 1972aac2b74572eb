package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/uvset"
)

// NewUVCmd creates the uv command group.
func NewUVCmd(cfg *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "uv",
		Short: "UV set maintenance",
	}

	c.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Make every object's stored UV set current",
		Long: `Give every object in every render set all three UV sets and make the
stored one current. Objects missing from the scene or without any UV sets
are skipped. Bake does this before rendering.`,
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
			res, err := uvset.New(s.scene).SyncAll(ctx, col)
			if err != nil {
				return err
			}
			if err := s.saveScene(); err != nil {
				return err
			}
			for _, obj := range res.Skipped {
				output.Debug("skipped", "object", obj)
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("synced %d object(s), skipped %d", len(res.Updated), len(res.Skipped))))
			return nil
		},
	})

	return c
}
