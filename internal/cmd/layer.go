package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
	"github.com/lightbake/lbake/internal/scene"
)

// NewLayerCmd creates the layer command group.
func NewLayerCmd(cfg *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "layer",
		Short: "Manage the render layer stack of a render set",
		Long: `Manage the render layer stack of a render set.

Layers are baked in stack order. In the composite document the last baked
layer ends up on top, blended with the layers below by its blend mode.`,
	}

	c.AddCommand(
		newLayerAddCmd(cfg),
		newLayerAddAllCmd(cfg),
		newLayerLoadCmd(cfg),
		newLayerRemoveCmd(cfg),
		newLayerMoveCmd(cfg),
		newLayerReorderCmd(cfg),
		newLayerBlendCmd(cfg),
		newLayerCopyToAllCmd(cfg),
	)

	return c
}

// checkSceneLayers rejects layers the scene does not have, and the default
// layer, which is never baked.
func checkSceneLayers(ctx context.Context, g scene.RenderLayers, layers []string) error {
	for _, layer := range layers {
		if layer == scene.DefaultRenderLayer {
			return fmt.Errorf("%w: %s cannot be baked", oerrors.ErrValidation, scene.DefaultRenderLayer)
		}
		ok, err := scene.HasRenderLayer(ctx, g, layer)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %q", renderset.ErrLayerNotFound, layer)
		}
	}
	return nil
}

func parseBlend(s string) (renderset.BlendMode, error) {
	b, err := renderset.ParseBlendMode(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", oerrors.ErrValidation, err)
	}
	return b, nil
}

func newLayerAddCmd(cfg *GlobalConfig) *cobra.Command {
	var blend string

	c := &cobra.Command{
		Use:   "add <set> <layer>...",
		Short: "Append render layers to a render set",
		Long: `Append render layers to a render set.

Layers already in the stack keep their position and blend mode.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			b, err := parseBlend(blend)
			if err != nil {
				return err
			}
			_, err = mutate(ctx, cfg, func(s *session, col *renderset.Collection) error {
				if err := checkSceneLayers(ctx, s.scene, args[1:]); err != nil {
					return err
				}
				return col.AddLayers(args[0], args[1:], b)
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("added %s to %s", strings.Join(args[1:], ", "), output.StyleNoun.Render(args[0]))))
			return nil
		},
	}

	c.Flags().StringVar(&blend, "blend", renderset.BlendAdditive.String(), "Blend mode (Additive, Multiply)")

	return c
}

func newLayerAddAllCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "add-all <layer>",
		Short: "Append a render layer to every render set that lacks it",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			var changed []string
			_, err := mutate(ctx, cfg, func(s *session, col *renderset.Collection) error {
				if err := checkSceneLayers(ctx, s.scene, args); err != nil {
					return err
				}
				changed = col.AddLayerToAll(args[0])
				return nil
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("added %s to %d render set(s)", args[0], len(changed))))
			return nil
		},
	}
}

func newLayerLoadCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "load <set>",
		Short: "Append every scene render layer to a render set",
		Long: `Append every scene render layer except ` + scene.DefaultRenderLayer + ` to a
render set, blended Additive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			var loaded []string
			_, err := mutate(ctx, cfg, func(s *session, col *renderset.Collection) error {
				layers, err := s.scene.RenderLayers(ctx)
				if err != nil {
					return err
				}
				for _, layer := range layers {
					if layer != scene.DefaultRenderLayer {
						loaded = append(loaded, layer)
					}
				}
				return col.AddLayers(args[0], loaded, renderset.BlendAdditive)
			})
			if err != nil {
				return err
			}
			if len(loaded) == 0 {
				output.Warn("scene has no render layers besides " + scene.DefaultRenderLayer)
				return nil
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("loaded %d render layer(s) into %s", len(loaded), output.StyleNoun.Render(args[0]))))
			return nil
		},
	}
}

func newLayerRemoveCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <set> <layer>...",
		Short: "Remove render layers from a render set",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				return col.RemoveLayers(args[0], args[1:]...)
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("removed %s from %s", strings.Join(args[1:], ", "), output.StyleNoun.Render(args[0]))))
			return nil
		},
	}
}

func newLayerMoveCmd(cfg *GlobalConfig) *cobra.Command {
	var down bool

	c := &cobra.Command{
		Use:   "move <set> <layer>...",
		Short: "Move render layers one slot up or down the stack",
		Long: `Move render layers one slot up (toward the start) or down the stack.

A layer already at the end it moves toward stays put.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			dir := renderset.Up
			if down {
				dir = renderset.Down
			}
			col, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				return col.MoveLayers(args[0], args[1:], dir)
			})
			if err != nil {
				return err
			}
			rs, _ := col.Get(args[0])
			output.Println(output.FormatCheckmark(output.StyleNoun.Render(args[0]) + ": " + strings.Join(rs.LayerNames(), ", ")))
			return nil
		},
	}

	c.Flags().BoolVar(&down, "down", false, "Move toward the end of the stack")

	return c
}

func newLayerReorderCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <set> <layer>...",
		Short: "Replace the stack order of a render set",
		Long:  `Replace the stack order of a render set. Every layer must be listed once.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				return col.ReorderLayers(args[0], args[1:])
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark(output.StyleNoun.Render(args[0]) + ": " + strings.Join(args[1:], ", ")))
			return nil
		},
	}
}

func newLayerBlendCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "blend <set> <mode> <layer>...",
		Short: "Change the blend mode of render layers",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			b, err := parseBlend(args[1])
			if err != nil {
				return err
			}
			_, err = mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				return col.SetBlend(args[0], args[2:], b)
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("%s now blend %s in %s", strings.Join(args[2:], ", "), b, output.StyleNoun.Render(args[0]))))
			return nil
		},
	}
}

func newLayerCopyToAllCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "copy-to-all <set>",
		Short: "Replace every other render set's stack with this set's",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			col, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				return col.CopyLayersToAll(args[0])
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("copied the layers of %s to %d render set(s)", output.StyleNoun.Render(args[0]), col.Len()-1)))
			return nil
		},
	}
}
