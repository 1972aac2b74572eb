package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
	"github.com/lightbake/lbake/internal/uvset"
)

// NewObjectCmd creates the object command group.
func NewObjectCmd(cfg *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "object",
		Short: "Manage the objects of a render set",
	}

	c.AddCommand(
		newObjectAddCmd(cfg),
		newObjectRemoveCmd(cfg),
		newObjectUVCmd(cfg),
	)

	return c
}

func newObjectAddCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "add <set> <object>...",
		Short: "Add objects to a render set",
		Long: `Add objects to a render set, recording each object's current UV set.

Objects already in the set keep their stored UV set. Every object must
exist in the scene and have at least one mesh below it.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runObjectAdd(c.Context(), cfg, args[0], args[1:])
		},
	}
}

func runObjectAdd(ctx context.Context, cfg *GlobalConfig, set string, objects []string) error {
	_, err := mutate(ctx, cfg, func(s *session, col *renderset.Collection) error {
		resolver := uvset.New(s.scene)
		channels := make(map[string]renderset.UVChannel, len(objects))
		for _, obj := range objects {
			meshes, err := s.scene.DescendantMeshes(ctx, obj)
			if err != nil {
				return err
			}
			if len(meshes) == 0 {
				return oerrors.NewNotFoundError("object has no meshes", obj,
					"Only objects with mesh shapes can be baked.")
			}
			ch, err := resolver.CurrentChannel(ctx, obj)
			if err != nil {
				return err
			}
			channels[obj] = ch
		}
		return col.AddObjects(set, channels)
	})
	if err != nil {
		return err
	}
	output.Println(output.FormatCheckmark(fmt.Sprintf("added %d object(s) to %s", len(objects), output.StyleNoun.Render(set))))
	return nil
}

func newObjectRemoveCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <set> <object>...",
		Short: "Remove objects from a render set",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				return col.RemoveObjects(args[0], args[1:]...)
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("removed %d object(s) from %s", len(args)-1, output.StyleNoun.Render(args[0]))))
			return nil
		},
	}
}

func newObjectUVCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "uv <set> <uv-set> <object>...",
		Short: "Change the UV set objects bake with",
		Long: `Change the UV set objects bake with.

This changes the current UV set of the scene objects too, creating the
channels below it when they are missing. Objects that no longer exist in
the scene are skipped.

Examples:
  # Bake the table with its second UV set
  lbake object uv Kitchen uvSet table`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			return runObjectUV(c.Context(), cfg, args[0], args[1], args[2:])
		},
	}
}

func runObjectUV(ctx context.Context, cfg *GlobalConfig, set, uvName string, objects []string) error {
	ch, err := renderset.ParseUVChannel(uvName)
	if err != nil {
		return fmt.Errorf("%w: %w", oerrors.ErrValidation, err)
	}

	var changed int
	_, err = mutate(ctx, cfg, func(s *session, col *renderset.Collection) error {
		resolver := uvset.New(s.scene)
		for _, obj := range objects {
			exists, err := s.scene.Exists(ctx, obj)
			if err != nil {
				return err
			}
			if !exists {
				output.RenderSetLogger(set).Warn("object not in scene, skipping", "object", obj)
				continue
			}
			if err := col.SetObjectChannel(set, obj, ch); err != nil {
				return err
			}
			if err := resolver.AssignChannel(ctx, obj, ch); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return err
	}
	output.Println(output.FormatCheckmark(fmt.Sprintf("%d object(s) in %s now bake with %s", changed, output.StyleNoun.Render(set), ch.Name())))
	return nil
}
