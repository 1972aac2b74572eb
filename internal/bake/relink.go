package bake

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"

	oerrors "github.com/lightbake/lbake/internal/errors"
	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
)

// RelinkExisting hooks already exported lightmaps up to their materials
// without baking. Render sets without an exported image are skipped.
func (o *Orchestrator) RelinkExisting(ctx context.Context, c *renderset.Collection) (*Report, error) {
	if err := o.checkReferences(ctx, c); err != nil {
		return nil, err
	}

	dir := o.layout.ExportDir()
	if ok, err := afero.DirExists(o.fs, dir); err != nil || !ok {
		return nil, oerrors.NewNotFoundError("export directory does not exist", dir,
			"Run 'lbake bake' first or check --project.")
	}

	report := newReport()
	for name, set := range c.All() {
		res := report.addSet(name)
		path := o.layout.ExportPath(o.opts.ExportPrefix, name, o.opts.ExportSuffix, o.opts.ExportFormat)
		if ok, err := afero.Exists(o.fs, path); err != nil || !ok {
			res.skip(fmt.Sprintf("%s does not exist", path))
			output.RenderSetLogger(name).Warn("skipping render set, no exported lightmap", "path", path)
			continue
		}
		res.Export = path
		for _, obj := range set.ObjectNames() {
			report.Hookup.Add(name, obj, path)
		}
		res.Phase = PhaseDone
	}

	if report.Hookup.Len() > 0 {
		current, err := o.scene.CurrentRenderLayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying current render layer: %w", err)
		}
		report.RenderLayer = current

		err = o.runHookup(ctx, report)
		if rerr := o.scene.SetCurrentRenderLayer(context.WithoutCancel(ctx), current); rerr != nil {
			output.Warn("could not restore render layer", "layer", current, "error", rerr)
		}
		if err != nil {
			report.Finished = time.Now()
			return report, err
		}
	}

	report.Finished = time.Now()
	return report, nil
}
