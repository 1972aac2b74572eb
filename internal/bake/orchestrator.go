// Package bake runs the lightmap pipeline: per render set, bake every
// selected render layer, stack the results into a layered document, flatten
// it, and finally point the scene's materials at the flattened images.
package bake

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/lightbake/lbake/internal/compositor"
	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/hookup"
	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderer"
	"github.com/lightbake/lbake/internal/renderset"
	"github.com/lightbake/lbake/internal/scene"
	"github.com/lightbake/lbake/internal/uvset"
	"github.com/lightbake/lbake/internal/validate"
)

// DefaultSettleDelay is the pause between enabling lightmap usage on
// materials and assigning their paths.
const DefaultSettleDelay = 5 * time.Second

// Options controls which stages run.
type Options struct {
	Composite   bool
	Flatten     bool
	Hookup      bool
	UVSnapshots bool

	// RequireAllSelected skips the composite of a render set when the
	// selector excluded any of its layers.
	RequireAllSelected bool

	// RequireAllBaked skips the composite of a render set when any of its
	// selected layers failed to bake.
	RequireAllBaked bool

	ExportPrefix string
	ExportSuffix string
	ExportFormat string

	DocumentExtension string
	ArtifactExtension string

	SettleDelay time.Duration

	// SkipSets are render sets left out of this run.
	SkipSets []string
}

// DefaultOptions enables every stage except hookup and snapshots.
func DefaultOptions() Options {
	return Options{
		Composite:          true,
		Flatten:            true,
		RequireAllSelected: true,
		ExportFormat:       compositor.DefaultExportFormat,
		DocumentExtension:  compositor.DefaultDocumentExtension,
		ArtifactExtension:  renderer.DefaultExtension,
		SettleDelay:        DefaultSettleDelay,
	}
}

// Deps are the services an Orchestrator drives.
type Deps struct {
	Scene    scene.Graph
	Renderer renderer.Service

	// Compositor may be nil when neither Composite nor Flatten is set.
	Compositor *compositor.Client

	FS       afero.Fs
	Selector Selector
}

// Orchestrator runs bakes. It is not safe for concurrent use.
type Orchestrator struct {
	scene      scene.Graph
	renderer   renderer.Service
	compositor *compositor.Client
	fs         afero.Fs
	selector   Selector
	layout     Layout
	opts       Options

	validator *validate.Validator
	uv        *uvset.Resolver
	hookup    *hookup.Hookup

	sleep func(ctx context.Context, d time.Duration) error
}

// New returns an Orchestrator writing under layout.
func New(deps Deps, layout Layout, opts Options) *Orchestrator {
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.Selector == nil {
		deps.Selector = AllLayers{}
	}
	def := DefaultOptions()
	if opts.ExportFormat == "" {
		opts.ExportFormat = def.ExportFormat
	}
	if opts.DocumentExtension == "" {
		opts.DocumentExtension = def.DocumentExtension
	}
	if opts.ArtifactExtension == "" {
		opts.ArtifactExtension = def.ArtifactExtension
	}

	return &Orchestrator{
		scene:      deps.Scene,
		renderer:   deps.Renderer,
		compositor: deps.Compositor,
		fs:         deps.FS,
		selector:   deps.Selector,
		layout:     layout,
		opts:       opts,
		validator:  validate.New(deps.Scene),
		uv:         uvset.New(deps.Scene),
		hookup:     hookup.New(deps.Scene),
		sleep: func(ctx context.Context, d time.Duration) error {
			return output.PauseWithSpinner(ctx, "Waiting for shader settings to settle...", d)
		},
	}
}

// Run bakes every enabled render set of c in collection order. It fails
// up front when c has stale references; afterwards per-layer and per-set
// problems are recorded in the report and never abort the run.
func (o *Orchestrator) Run(ctx context.Context, c *renderset.Collection) (*Report, error) {
	if c.Len() == 0 {
		output.Warn("no render sets to bake")
		report := newReport()
		report.Finished = report.Started
		return report, nil
	}
	if err := o.checkReferences(ctx, c); err != nil {
		return nil, err
	}
	if o.needsCompositor() && o.compositor == nil {
		return nil, fmt.Errorf("composite or flatten requested without a compositor: %w", oerrors.ErrConfig)
	}

	if _, err := o.uv.SyncAll(ctx, c); err != nil {
		return nil, fmt.Errorf("syncing UV sets: %w", err)
	}

	for _, dir := range o.layout.Dirs() {
		if err := o.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	report := newReport()
	runLog := output.Logger().With("run", report.RunID[:8])
	runLog.Info("bake started", "sets", c.Len())

	current, err := o.scene.CurrentRenderLayer(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying current render layer: %w", err)
	}
	report.RenderLayer = current

	skip := make(map[string]bool, len(o.opts.SkipSets))
	for _, s := range o.opts.SkipSets {
		skip[s] = true
	}

	var runErr error
	for name, set := range c.All() {
		res := report.addSet(name)
		if skip[name] {
			res.skip(ReasonRequested)
			output.RenderSetLogger(name).Info("skipping render set", "reason", res.Reason)
			continue
		}
		if runErr = o.runSet(ctx, name, set, res, report.Hookup); runErr != nil {
			break
		}
	}

	if err := o.scene.SetCurrentRenderLayer(context.WithoutCancel(ctx), current); err != nil {
		runLog.Warn("could not restore render layer", "layer", current, "error", err)
	}
	if runErr != nil {
		report.Finished = time.Now()
		return report, runErr
	}

	if o.opts.Hookup && report.Hookup.Len() > 0 {
		err := o.runHookup(ctx, report)
		if rerr := o.scene.SetCurrentRenderLayer(context.WithoutCancel(ctx), current); rerr != nil {
			runLog.Warn("could not restore render layer", "layer", current, "error", rerr)
		}
		if err != nil {
			report.Finished = time.Now()
			return report, err
		}
	}

	report.Finished = time.Now()
	runLog.Info("bake finished", "failed", len(report.Failures()), "skipped", len(report.Skipped()),
		"duration", report.Duration().Round(time.Millisecond))
	return report, nil
}

func (o *Orchestrator) needsCompositor() bool {
	return o.opts.Composite || o.opts.Flatten
}

func (o *Orchestrator) checkReferences(ctx context.Context, c *renderset.Collection) error {
	report, err := o.validator.Validate(ctx, c)
	if err != nil {
		return fmt.Errorf("validating render sets: %w", err)
	}
	if !report.Empty() {
		return oerrors.NewStaleReferencesError(report.Count(), report.SetNames())
	}
	return nil
}

// runSet drives one render set to Done or Skipped. Only context
// cancellation and selector errors other than dismissal are returned.
func (o *Orchestrator) runSet(ctx context.Context, name string, set *renderset.RenderSet, res *SetResult, hookups hookup.Assignments) error {
	log := output.RenderSetLogger(name)

	switch {
	case !set.RenderMe:
		res.skip(ReasonDisabled)
	case set.RenderLayers == nil || set.RenderLayers.Len() == 0:
		res.skip(ReasonNoLayers)
	case len(set.Objects) == 0:
		res.skip(ReasonNoObjects)
	}
	if res.Phase == PhaseSkipped {
		log.Info("skipping render set", "reason", res.Reason)
		return nil
	}

	stored := set.LayerNames()
	picked, err := o.selector.SelectLayers(ctx, name, stored)
	if err != nil && !errors.Is(err, ErrDismissed) {
		return fmt.Errorf("selecting layers for %s: %w", name, err)
	}
	selected := inStoredOrder(stored, picked)
	if err != nil || len(selected) == 0 {
		res.skip(ReasonDismissed)
		log.Info("skipping render set", "reason", res.Reason)
		return nil
	}
	res.Selected = selected

	res.Phase = PhaseBaking
	if err := o.bakeLayers(ctx, log, name, set, res); err != nil {
		return err
	}
	if len(res.Baked) == 0 {
		res.skip(ReasonNoOutput)
		log.Warn("skipping render set", "reason", res.Reason)
		return nil
	}

	docPath := o.layout.DocumentPath(name, o.opts.DocumentExtension)
	built := false
	if o.opts.Composite {
		res.Phase = PhaseCompositing
		var err error
		if built, err = o.composite(ctx, log, name, set, docPath, res); err != nil {
			res.note("composite failed: %v", err)
			log.Error("composite failed", "document", docPath, "error", err)
			o.snapshot(ctx, log, name, set, res)
			res.Phase = PhaseDone
			return ctx.Err()
		}
	}

	// A document left over from an earlier run is only exported when this
	// run was not asked to composite.
	switch {
	case o.opts.Flatten && o.opts.Composite && !built:
		res.note("flatten skipped: no composite document from this run")
		log.Info("skipping flatten", "document", docPath)
	case o.opts.Flatten:
		res.Phase = PhaseFlattening
		o.flatten(ctx, log, name, set, docPath, res, hookups)
	}

	o.snapshot(ctx, log, name, set, res)
	res.Phase = PhaseDone
	return ctx.Err()
}

// bakeLayers renders each selected layer in stored order. A missing output
// file is recorded as a failure and the loop moves on.
func (o *Orchestrator) bakeLayers(ctx context.Context, log *log.Logger, name string, set *renderset.RenderSet, res *SetResult) error {
	objects := set.ObjectNames()
	uvSet := uvset.DominantChannel(set).Name()

	for _, layer := range res.Selected {
		if err := ctx.Err(); err != nil {
			return err
		}

		req := renderer.Request{
			Objects:      objects,
			UVSet:        uvSet,
			Resolution:   set.Resolution.Pixels(),
			Padding:      set.FillTextureSeams,
			Layer:        layer,
			ArtifactName: set.ArtifactName(name, layer),
			OutputDir:    o.layout.LightMapDir(),
			Extension:    o.opts.ArtifactExtension,
			LayoutUVs:    set.LayoutUVs,
			ColorMode:    set.ColorMode,
		}
		fail := func(reason string) {
			res.Failed = append(res.Failed, Failure{
				Set:      name,
				Layer:    layer,
				Artifact: req.ArtifactName + "." + req.Extension,
				Reason:   reason,
			})
			log.Warn("lightmap not produced", "layer", layer, "artifact", req.ArtifactName, "reason", reason)
		}

		if err := o.prepareLayer(ctx, layer, objects); err != nil {
			fail(err.Error())
			continue
		}

		log.Info("baking", "layer", layer, "artifact", req.ArtifactName, "uvSet", uvSet, "resolution", req.Resolution)
		if err := o.renderer.Bake(ctx, req); err != nil {
			log.Debug("renderer reported an error", "layer", layer, "error", err)
		}

		path := req.OutputPath()
		ok, err := afero.Exists(o.fs, path)
		if err != nil || !ok {
			fail("output file missing")
			continue
		}
		res.Baked = append(res.Baked, Artifact{Layer: layer, Path: path, Index: len(res.Baked)})
	}
	return nil
}

// prepareLayer makes layer current and adds any objects it lacks.
func (o *Orchestrator) prepareLayer(ctx context.Context, layer string, objects []string) error {
	if err := o.scene.SetCurrentRenderLayer(ctx, layer); err != nil {
		return fmt.Errorf("switching to render layer: %w", err)
	}
	members, err := o.scene.LayerMembers(ctx, layer)
	if err != nil {
		return fmt.Errorf("listing render layer members: %w", err)
	}
	have := make(map[string]bool, len(members))
	for _, m := range members {
		have[m] = true
	}
	var missing []string
	for _, obj := range objects {
		if !have[obj] {
			missing = append(missing, obj)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	output.Debug("adding objects to render layer", "layer", layer, "objects", missing)
	if err := o.scene.AddLayerMembers(ctx, layer, missing); err != nil {
		return fmt.Errorf("adding objects to render layer: %w", err)
	}
	return nil
}

// stack inverts bake order so the first baked layer ends up at the bottom.
func stack(baked []Artifact) []Artifact {
	out := make([]Artifact, len(baked))
	last := len(baked) - 1
	for i, a := range baked {
		a.Index = last - i
		out[a.Index] = a
	}
	return out
}

// composite builds the layered document and reports whether it did. A gate
// that holds the composite back is not an error.
func (o *Orchestrator) composite(ctx context.Context, log *log.Logger, name string, set *renderset.RenderSet, docPath string, res *SetResult) (bool, error) {
	total := set.RenderLayers.Len()
	switch {
	case o.opts.RequireAllSelected && len(res.Selected) < total:
		res.note("composite skipped: %d of %d render layers selected", len(res.Selected), total)
		log.Info("skipping composite", "selected", len(res.Selected), "total", total)
		return false, nil
	case o.opts.RequireAllBaked && len(res.Failed) > 0:
		res.note("composite skipped: %d render layer(s) failed to bake", len(res.Failed))
		log.Info("skipping composite", "failed", len(res.Failed))
		return false, nil
	}

	layers := stack(res.Baked)
	artifacts := make([]compositor.Artifact, 0, len(layers))
	blends := make(map[string]renderset.BlendMode, len(layers))
	for _, a := range layers {
		artifacts = append(artifacts, compositor.Artifact{Path: a.Path, Layer: a.Layer, Index: a.Index})
		blends[a.Layer], _ = set.RenderLayers.Get(a.Layer)
	}

	remove := func() error {
		if err := o.fs.Remove(docPath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	result, err := o.compositor.Build(ctx, docPath, set.Resolution.Pixels(), artifacts, blends, remove)
	if err != nil {
		return false, err
	}
	res.Document = docPath
	log.Info("composite document written", "document", docPath, "layers", len(result.Linked))
	return true, nil
}

func (o *Orchestrator) flatten(ctx context.Context, log *log.Logger, name string, set *renderset.RenderSet, docPath string, res *SetResult, hookups hookup.Assignments) {
	if ok, err := afero.Exists(o.fs, docPath); err != nil || !ok {
		res.note("flatten skipped: %s does not exist", docPath)
		log.Warn("skipping flatten, no composite document", "document", docPath)
		return
	}

	exportPath := o.layout.ExportPath(o.opts.ExportPrefix, name, o.opts.ExportSuffix, o.opts.ExportFormat)
	if err := o.compositor.Flatten(ctx, docPath, exportPath, o.opts.ExportFormat); err != nil {
		res.note("flatten failed: %v", err)
		log.Error("flatten failed", "document", docPath, "error", err)
		return
	}
	res.Export = exportPath
	log.Info("lightmap exported", "path", exportPath)

	if o.opts.Hookup {
		for _, obj := range set.ObjectNames() {
			hookups.Add(name, obj, exportPath)
		}
	}
}

func (o *Orchestrator) snapshot(ctx context.Context, log *log.Logger, name string, set *renderset.RenderSet, res *SetResult) {
	if !o.opts.UVSnapshots {
		return
	}
	snap, ok := o.renderer.(renderer.UVSnapshotter)
	if !ok {
		res.note("uv snapshot skipped: renderer cannot export snapshots")
		return
	}
	path := o.layout.SnapshotPath(name)
	err := snap.UVSnapshot(ctx, renderer.SnapshotRequest{
		Objects:    set.ObjectNames(),
		UVSet:      uvset.DominantChannel(set).Name(),
		Resolution: set.Resolution.Pixels(),
		Path:       path,
	})
	if err != nil {
		res.note("uv snapshot failed: %v", err)
		log.Warn("uv snapshot failed", "error", err)
		return
	}
	res.Snapshot = path
}

// runHookup switches to the default render layer, enables lightmap usage,
// waits for the scene to settle, then assigns the lightmap paths.
func (o *Orchestrator) runHookup(ctx context.Context, report *Report) error {
	if err := o.scene.SetCurrentRenderLayer(ctx, scene.DefaultRenderLayer); err != nil {
		output.Warn("could not switch to default render layer", "error", err)
	}

	enabled, err := o.hookup.EnableLightmapUsage(ctx, report.Hookup)
	report.Enabled = enabled
	if err != nil {
		return err
	}

	if o.opts.SettleDelay > 0 {
		if err := o.sleep(ctx, o.opts.SettleDelay); err != nil {
			return err
		}
	}

	assigned, err := o.hookup.AssignLightmapPaths(ctx, report.Hookup)
	report.Assigned = assigned
	return err
}
