package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
)

// NewSetCmd creates the set command group.
func NewSetCmd(cfg *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "set",
		Short: "Manage render sets",
		Long: `Manage render sets.

Every change reloads the stored collection, applies the edit and writes the
whole collection back.`,
	}

	c.AddCommand(
		newSetListCmd(cfg),
		newSetShowCmd(cfg),
		newSetCreateCmd(cfg),
		newSetDeleteCmd(cfg),
		newSetRenameCmd(cfg),
		newSetDuplicateCmd(cfg),
		newSetLockCmd(cfg),
		newSetRenderMeCmd(cfg, "enable", true),
		newSetRenderMeCmd(cfg, "disable", false),
		newSetToggleAllCmd(cfg),
		newSetSortCmd(cfg),
		newSetConfigureCmd(cfg),
		newSetAutoResolutionCmd(cfg),
	)

	return c
}

// mutate opens a session and runs fn inside store.Update.
func mutate(ctx context.Context, cfg *GlobalConfig, fn func(*session, *renderset.Collection) error) (*renderset.Collection, error) {
	s, err := openSession(cfg)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, func(c *renderset.Collection) error {
		return fn(s, c)
	})
}

// namesOrAll returns args, or every set name when args is empty.
func namesOrAll(c *renderset.Collection, args []string) []string {
	if len(args) > 0 {
		return args
	}
	return c.Names()
}

func newSetListCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List render sets",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			s, err := openSession(cfg)
			if err != nil {
				return err
			}
			col, err := s.load(c.Context())
			if err != nil {
				return err
			}
			if col.Len() == 0 {
				output.Println("No render sets in " + s.store.Location())
				return nil
			}
			output.Println(renderSetTable(col).String())
			return nil
		},
	}
}

func renderSetTable(col *renderset.Collection) *output.Table {
	tbl := output.NewTable("NAME", "RENDER", "RESOLUTION", "COLOR MODE", "SEAMS", "PREFIX", "OBJECTS", "LAYERS").
		AlignRight(2, 4, 6)
	for name, rs := range col.All() {
		render := output.StatusDone
		if !rs.RenderMe {
			render = output.StatusDisabled
		}
		tbl.Row(
			name,
			output.StatusStyle(render).Render(render),
			rs.Resolution.String(),
			rs.ColorMode.String(),
			strconv.FormatFloat(rs.FillTextureSeams, 'g', -1, 64),
			rs.LightMapPrefix,
			strconv.Itoa(len(rs.Objects)),
			strings.Join(rs.LayerNames(), ", "),
		)
	}
	return tbl
}

type setShowOptions struct {
	output string
}

func newSetShowCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &setShowOptions{}

	c := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one render set",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runSetShow(c.Context(), cfg, args[0], opts)
		},
	}

	c.Flags().StringVarP(&opts.output, "output", "o", "yaml", "Output format (yaml, json)")

	return c
}

func runSetShow(ctx context.Context, cfg *GlobalConfig, name string, opts *setShowOptions) error {
	if opts.output != "yaml" && opts.output != "json" {
		return fmt.Errorf("%w: invalid output format %q, use yaml or json", oerrors.ErrValidation, opts.output)
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	col, err := s.load(ctx)
	if err != nil {
		return err
	}
	rs, err := col.MustGet(name)
	if err != nil {
		return err
	}

	one := renderset.NewCollection()
	one.Put(name, rs)

	var data []byte
	switch opts.output {
	case "json":
		data, err = json.MarshalIndent(one, "", "  ")
	default:
		data, err = renderset.Encode(one)
	}
	if err != nil {
		return fmt.Errorf("encoding render set: %w", err)
	}
	output.Println(strings.TrimRight(string(data), "\n"))
	return nil
}

func newSetCreateCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>...",
		Short: "Create render sets with default settings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				for _, name := range args {
					if _, err := col.Create(name); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, name := range args {
				output.Println(output.FormatCheckmark("created " + output.StyleNoun.Render(name)))
			}
			return nil
		},
	}
}

func newSetDeleteCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>...",
		Short: "Delete render sets",
		Long:  `Delete render sets. Nothing is deleted if any name is unknown.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				return col.Delete(args...)
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("deleted %d render set(s)", len(args))))
			return nil
		},
	}
}

func newSetRenameCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a render set, keeping its position",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				return col.Rename(args[0], args[1])
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark("renamed " + args[0] + " to " + output.StyleNoun.Render(args[1])))
			return nil
		},
	}
}

func newSetDuplicateCmd(cfg *GlobalConfig) *cobra.Command {
	var suffix string

	c := &cobra.Command{
		Use:   "duplicate <name>...",
		Short: "Copy render sets under name+suffix",
		Long: `Copy render sets under name+suffix.

Copies whose name is already taken are skipped with a warning.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var created, skipped []string
			_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				var err error
				created, skipped, err = col.Duplicate(args, suffix)
				return err
			})
			if err != nil {
				return err
			}
			for _, name := range skipped {
				output.Warn("render set already exists, not duplicated", "name", name)
			}
			for _, name := range created {
				output.Println(output.FormatCheckmark("created " + output.StyleNoun.Render(name)))
			}
			return nil
		},
	}

	c.Flags().StringVar(&suffix, "suffix", "", "Suffix appended to each copy's name")
	_ = c.MarkFlagRequired("suffix")

	return c
}

func newSetLockCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "lock <name>...",
		Short: "Rename render sets with the " + renderset.LockedSuffix + " suffix",
		Long: `Rename render sets with the ` + renderset.LockedSuffix + ` suffix.

Light maps of locked sets are hooked up to the locked light map slot.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var renamed, skipped []string
			_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				var err error
				renamed, skipped, err = col.AddLockedSuffix(args)
				return err
			})
			if err != nil {
				return err
			}
			for _, name := range skipped {
				output.Warn("render set not renamed, already locked or target name taken", "name", name)
			}
			for _, name := range renamed {
				output.Println(output.FormatCheckmark("locked " + output.StyleNoun.Render(name)))
			}
			return nil
		},
	}
}

func newSetRenderMeCmd(cfg *GlobalConfig, use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [name]...",
		Short: strings.ToUpper(use[:1]) + use[1:] + " render sets for baking (all when none given)",
		RunE: func(c *cobra.Command, args []string) error {
			var names []string
			_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				names = namesOrAll(col, args)
				return col.SetRenderMe(names, enabled)
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("%sd %d render set(s)", use, len(names))))
			return nil
		},
	}
}

func newSetToggleAllCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-all",
		Short: "Flip every render set to the opposite of the first set's state",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			var state bool
			col, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				state = col.ToggleAllRenderMe()
				return nil
			})
			if err != nil {
				return err
			}
			word := "disabled"
			if state {
				word = "enabled"
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("%s %d render set(s)", word, col.Len())))
			return nil
		},
	}
}

func newSetSortCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "sort",
		Short: "Order render sets by name",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
				col.Sort()
				return nil
			})
			if err != nil {
				return err
			}
			output.Println(output.FormatCheckmark("sorted render sets"))
			return nil
		},
	}
}

type setConfigureOptions struct {
	resolution string
	colorMode  string
	seams      float64
	prefix     string
	layoutUVs  bool
}

func newSetConfigureCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &setConfigureOptions{}

	c := &cobra.Command{
		Use:   "configure <name>...",
		Short: "Change bake settings of render sets",
		Long: `Change bake settings of render sets. Only the flags given are applied.

Examples:
  # Bake two sets at 512 pixels with occlusion only
  lbake set configure Kitchen Hall --resolution 512 --color-mode occlusion

  # Pad texture seams by 5 texels
  lbake set configure Kitchen --seams 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runSetConfigure(c, cfg, args, opts)
		},
	}

	c.Flags().StringVar(&opts.resolution, "resolution", "", fmt.Sprintf("Light map size in pixels %v", renderset.ResolutionSizes))
	c.Flags().StringVar(&opts.colorMode, "color-mode", "", "Color mode name or index")
	c.Flags().Float64Var(&opts.seams, "seams", renderset.DefaultFillTextureSeams, "Texel padding around UV shells [0-10]")
	c.Flags().StringVar(&opts.prefix, "prefix", "", "Light map file name prefix")
	c.Flags().BoolVar(&opts.layoutUVs, "layout-uvs", false, "Let the renderer lay out UVs automatically")

	return c
}

func runSetConfigure(c *cobra.Command, cfg *GlobalConfig, names []string, opts *setConfigureOptions) error {
	flags := c.Flags()

	var res renderset.Resolution
	if flags.Changed("resolution") {
		var err error
		if res, err = renderset.ParseResolution(opts.resolution); err != nil {
			return fmt.Errorf("%w: %w", oerrors.ErrValidation, err)
		}
	}
	var mode renderset.ColorMode
	if flags.Changed("color-mode") {
		var err error
		if mode, err = renderset.ParseColorMode(opts.colorMode); err != nil {
			return fmt.Errorf("%w: %w", oerrors.ErrValidation, err)
		}
	}

	var changed []string
	_, err := mutate(c.Context(), cfg, func(_ *session, col *renderset.Collection) error {
		if flags.Changed("resolution") {
			if err := col.SetResolution(names, res); err != nil {
				return err
			}
			changed = append(changed, "resolution="+res.String())
		}
		if flags.Changed("color-mode") {
			if err := col.SetColorMode(names, mode); err != nil {
				return err
			}
			changed = append(changed, "colorMode="+mode.String())
		}
		if flags.Changed("seams") {
			if err := col.SetFillTextureSeams(names, opts.seams); err != nil {
				return err
			}
			changed = append(changed, fmt.Sprintf("fillTextureSeams=%g", opts.seams))
		}
		if flags.Changed("prefix") {
			if err := col.SetLightMapPrefix(names, opts.prefix); err != nil {
				return err
			}
			changed = append(changed, "lightMapPrefix="+opts.prefix)
		}
		if flags.Changed("layout-uvs") {
			if err := col.SetLayoutUVs(names, opts.layoutUVs); err != nil {
				return err
			}
			changed = append(changed, fmt.Sprintf("layoutUVs=%t", opts.layoutUVs))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(changed) == 0 {
		output.Warn("nothing to change, pass at least one setting flag")
		return nil
	}
	output.Println(output.FormatCheckmark(fmt.Sprintf("updated %d render set(s): %s", len(names), strings.Join(changed, ", "))))
	return nil
}

func newSetAutoResolutionCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "auto-resolution [name]...",
		Short: "Pick resolutions from object sizes (all sets when none given)",
		Long: `Pick each render set's resolution from the summed mean bounding box
extent of its objects. Sets without objects are left unchanged.`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			var picked map[string]renderset.Resolution
			_, err := mutate(ctx, cfg, func(s *session, col *renderset.Collection) error {
				var err error
				picked, err = col.AutoResolution(namesOrAll(col, args), func(obj string) (renderset.Bounds, error) {
					return s.scene.BoundingBox(ctx, obj)
				})
				return err
			})
			if err != nil {
				return err
			}

			tbl := output.NewTable("RENDER SET", "RESOLUTION").AlignRight(1)
			for _, name := range sortedNames(picked) {
				tbl.Row(name, picked[name].String())
			}
			if tbl.Len() == 0 {
				output.Println("No render sets with objects")
				return nil
			}
			output.Println(tbl.String())
			return nil
		},
	}
}
