package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/lightbake/lbake/internal/bake"
	"github.com/lightbake/lbake/internal/compositor"
	"github.com/lightbake/lbake/internal/config"
	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderer"
)

// newRenderer builds the renderer from config. Swapped in tests.
var newRenderer = func(rc config.RendererConfig) (renderer.Service, error) {
	r, err := renderer.NewExecRenderer(rc.Command, rc.SnapshotCommand)
	if err != nil {
		if errors.Is(err, renderer.ErrNoCommand) {
			return nil, fmt.Errorf("%w: %w (set renderer.command)", oerrors.ErrConfig, err)
		}
		return nil, err
	}
	return r, nil
}

// startCompositor starts the compositor helper. The returned func stops it.
// Swapped in tests.
var startCompositor = func(ctx context.Context, argv []string) (compositor.Service, func() error, error) {
	b, err := compositor.StartBridge(ctx, argv)
	if err != nil {
		return nil, nil, err
	}
	return b, b.Close, nil
}

type bakeOptions struct {
	repair             bool
	noComposite        bool
	noFlatten          bool
	hookup             bool
	uvSnapshots        bool
	interactive        bool
	exclude            []string
	skip               []string
	pngPrefix          string
	pngSuffix          string
	requireAllSelected bool
	requireAllBaked    bool
}

// NewBakeCmd creates the bake command.
func NewBakeCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &bakeOptions{}

	c := &cobra.Command{
		Use:   "bake",
		Short: "Bake, composite and export the light maps of every enabled render set",
		Long: `Bake, composite and export the light maps of every enabled render set.

For each render set, in stored order:
  1. bake every selected render layer to textures/lightMap/
  2. stack the light maps into a layered document, last baked on top
  3. flatten the document to textures/LM/<prefix><set><suffix>.png
  4. optionally write a UV snapshot to textures/uvSnapshots/

With --hookup the exported images are then linked to the materials of each
set's objects. Per-layer failures and skipped render sets are listed at the
end; they do not fail the command.

Examples:
  # Bake everything
  lbake bake

  # Bake without the Shadow layer of Kitchen and still composite Kitchen
  lbake bake --exclude Kitchen:Shadow --require-all-selected=false

  # Bake, export as Env_<set>.png and link the images to materials
  lbake bake --png-prefix Env --hookup`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runBake(c, cfg, opts)
		},
	}

	f := c.Flags()
	f.BoolVar(&opts.repair, "repair", false, "Remove dangling references before baking")
	f.BoolVar(&opts.noComposite, "no-composite", false, "Skip building the layered documents")
	f.BoolVar(&opts.noFlatten, "no-flatten", false, "Skip exporting flattened images")
	f.BoolVar(&opts.hookup, "hookup", false, "Link exported images to the objects' materials")
	f.BoolVar(&opts.uvSnapshots, "uv-snapshots", false, "Write a UV snapshot per render set")
	f.BoolVar(&opts.interactive, "select", false, "Pick the render layers to bake per render set")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "Leave out a render layer of a render set (SET:LAYER, repeatable)")
	f.StringArrayVar(&opts.skip, "skip", nil, "Leave out a render set (repeatable)")
	f.StringVar(&opts.pngPrefix, "png-prefix", "", "Prefix of exported image names (default from bake.pngPrefix)")
	f.StringVar(&opts.pngSuffix, "png-suffix", "", "Suffix of exported image names (default from bake.pngSuffix)")
	f.BoolVar(&opts.requireAllSelected, "require-all-selected", true, "Skip the composite of a set when any of its layers was left out (default from bake.requireAllSelected)")
	f.BoolVar(&opts.requireAllBaked, "require-all-baked", false, "Skip the composite of a set when any of its layers failed (default from bake.requireAllBaked)")

	return c
}

func runBake(c *cobra.Command, cfg *GlobalConfig, opts *bakeOptions) error {
	ctx := c.Context()

	if opts.interactive && len(opts.exclude) > 0 {
		return fmt.Errorf("%w: --select and --exclude cannot be combined", oerrors.ErrValidation)
	}
	selector, err := buildSelector(opts)
	if err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}

	if opts.repair {
		removed, err := repairStore(ctx, s)
		if err != nil {
			return err
		}
		if removed > 0 {
			output.Info("removed dangling references", "count", removed)
		}
	}

	col, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := checkSchema(col); err != nil {
		return err
	}

	bopts := bakeRunOptions(c, cfg.Config, opts)

	r, err := newRenderer(cfg.Config.Renderer)
	if err != nil {
		return err
	}

	deps := bake.Deps{
		Scene:    s.scene,
		Renderer: r,
		FS:       s.fs,
		Selector: selector,
	}
	if bopts.Composite || bopts.Flatten {
		svc, stop, err := startCompositor(ctx, cfg.Config.Compositor.Command)
		if err != nil {
			return err
		}
		defer func() {
			if err := stop(); err != nil {
				output.Debug("stopping compositor", "error", err)
			}
		}()
		deps.Compositor = compositor.NewClient(svc, compositorOptions(cfg.Config.Compositor))
	}

	report, runErr := bake.New(deps, s.layout, bopts).Run(ctx, col)

	// Layer membership, UV sets and material attributes changed even when
	// the run stopped early.
	if report != nil {
		if err := s.saveScene(); err != nil {
			return err
		}
		printBakeReport(report)
	}
	return runErr
}

// bakeRunOptions merges config defaults with the flags the user set.
func bakeRunOptions(c *cobra.Command, conf *config.Config, opts *bakeOptions) bake.Options {
	flags := c.Flags()

	o := bake.DefaultOptions()
	o.Composite = !opts.noComposite
	o.Flatten = !opts.noFlatten
	o.Hookup = opts.hookup
	o.UVSnapshots = opts.uvSnapshots
	o.SkipSets = opts.skip

	o.ExportPrefix = conf.Bake.PNGPrefix
	if flags.Changed("png-prefix") {
		o.ExportPrefix = opts.pngPrefix
	}
	o.ExportSuffix = conf.Bake.PNGSuffix
	if flags.Changed("png-suffix") {
		o.ExportSuffix = opts.pngSuffix
	}
	o.RequireAllSelected = conf.Bake.RequireAllSelected
	if flags.Changed("require-all-selected") {
		o.RequireAllSelected = opts.requireAllSelected
	}
	o.RequireAllBaked = conf.Bake.RequireAllBaked
	if flags.Changed("require-all-baked") {
		o.RequireAllBaked = opts.requireAllBaked
	}

	if conf.Bake.ExportFormat != "" {
		o.ExportFormat = conf.Bake.ExportFormat
	}
	if conf.Bake.SettleDelay > 0 {
		o.SettleDelay = conf.Bake.SettleDelay
	}
	if conf.Compositor.DocumentExtension != "" {
		o.DocumentExtension = conf.Compositor.DocumentExtension
	}
	if conf.Renderer.Extension != "" {
		o.ArtifactExtension = conf.Renderer.Extension
	}
	return o
}

func compositorOptions(cc config.CompositorConfig) compositor.Options {
	o := compositor.DefaultOptions()
	if cc.ColorDepth > 0 {
		o.ColorDepth = cc.ColorDepth
	}
	if cc.Gamma > 0 {
		o.Gamma = cc.Gamma
	}
	if cc.MaxAttempts > 0 {
		o.Retry.MaxAttempts = cc.MaxAttempts
	}
	if cc.RetryDelay > 0 {
		o.Retry.Delay = cc.RetryDelay
	}
	return o
}

func buildSelector(opts *bakeOptions) (bake.Selector, error) {
	switch {
	case opts.interactive:
		if !output.IsTTY() {
			return nil, fmt.Errorf("%w: --select needs an interactive terminal", oerrors.ErrValidation)
		}
		return layerPicker(), nil
	case len(opts.exclude) > 0:
		return parseExcludes(opts.exclude)
	default:
		return bake.AllLayers{}, nil
	}
}

// parseExcludes turns SET:LAYER pairs into an ExcludeLayers selector.
func parseExcludes(pairs []string) (bake.ExcludeLayers, error) {
	ex := bake.ExcludeLayers{}
	for _, pair := range pairs {
		set, layer, ok := strings.Cut(pair, ":")
		if !ok || set == "" || layer == "" {
			return nil, fmt.Errorf("%w: --exclude %q, want SET:LAYER", oerrors.ErrValidation, pair)
		}
		ex[set] = append(ex[set], layer)
	}
	return ex, nil
}

// layerPicker asks for the layers of each render set with every stored
// layer preselected. Aborting the form dismisses that render set.
func layerPicker() bake.Selector {
	return bake.SelectorFunc(func(ctx context.Context, set string, layers []string) ([]string, error) {
		options := huh.NewOptions(layers...)
		for i := range options {
			options[i] = options[i].Selected(true)
		}

		var picked []string
		form := huh.NewForm(huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Render layers to bake for " + set).
				Options(options...).
				Value(&picked),
		))
		if err := form.RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil, bake.ErrDismissed
			}
			return nil, err
		}
		return picked, nil
	})
}

func printBakeReport(report *bake.Report) {
	for _, res := range report.Sets {
		output.Println(output.FormatSetLine(res.Name, "", setStatus(res)))
		for _, f := range res.Failed {
			output.Println("    " + output.StatusStyle(output.StatusFailed).Render(f.String()) + "  " + output.StyleDim.Render(f.Reason))
		}
		if res.Phase == bake.PhaseSkipped {
			output.Println("    " + output.StyleDim.Render(res.Reason))
		}
		for _, n := range res.Notes {
			output.Println("    " + output.StyleDim.Render(n))
		}
		if res.Export != "" {
			output.Println("    " + res.Export)
		}
	}

	if n := report.Hookup.Len(); n > 0 {
		output.Println(output.FormatCheckmark(fmt.Sprintf("linked light maps for %d render set(s), %d material attribute(s) set",
			n, len(report.Assigned.Changes))))
		for _, sk := range report.Assigned.Skipped {
			output.Println("    " + output.StatusStyle(output.StatusSkipped).Render(sk.Set+"/"+sk.Object) + "  " + output.StyleDim.Render(sk.Reason))
		}
	}

	output.Println(output.StyleSummary.Render(fmt.Sprintf("%d render set(s), %d failed layer(s), %d skipped, in %s",
		len(report.Sets), len(report.Failures()), len(report.Skipped()), report.Duration().Round(time.Millisecond))))
}

func setStatus(res *bake.SetResult) string {
	switch {
	case res.Phase == bake.PhaseSkipped && res.Reason == bake.ReasonDisabled:
		return output.StatusDisabled
	case res.Phase == bake.PhaseSkipped:
		return output.StatusSkipped
	case len(res.Failed) > 0 || len(res.Notes) > 0:
		return output.StatusPartial
	case res.Phase == bake.PhaseDone:
		return output.StatusDone
	default:
		return output.StatusFailed
	}
}
