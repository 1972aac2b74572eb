package compositor

import (
	"context"
	"fmt"

	"github.com/lightbake/lbake/internal/output"
	"github.com/lightbake/lbake/internal/renderset"
)

// Options configures a Client.
type Options struct {
	ColorDepth int
	Gamma      float64
	Retry      RetryPolicy
}

// DefaultOptions returns the standard document settings and retry policy.
func DefaultOptions() Options {
	return Options{
		ColorDepth: DefaultColorDepth,
		Gamma:      DefaultGamma,
		Retry:      DefaultRetryPolicy(),
	}
}

// Artifact is one baked lightmap to be stacked into a document.
type Artifact struct {
	Path  string
	Layer string
	Index int
}

// Result summarizes a Compose call.
type Result struct {
	// Linked lists the layers that were linked to an artifact, in
	// document order.
	Linked []string

	GammaLayers      int
	BackgroundFilled bool
}

// Client runs composite and flatten units of work against a Service,
// retrying each whole unit on busy errors.
type Client struct {
	svc  Service
	opts Options
}

// NewClient returns a Client over svc.
func NewClient(svc Service, opts Options) *Client {
	if opts.ColorDepth == 0 {
		opts.ColorDepth = DefaultColorDepth
	}
	if opts.Gamma == 0 {
		opts.Gamma = DefaultGamma
	}
	return &Client{svc: svc, opts: opts}
}

// Build replaces the document at path with a size×size layered document
// holding one layer per artifact, then composes it. Open-or-create and
// compose form one unit: a busy error anywhere retries from the close of
// any open copy. remove, when set, is called between closing that copy and
// creating the new one.
func (c *Client) Build(ctx context.Context, path string, size int, artifacts []Artifact, blends map[string]renderset.BlendMode, remove func() error) (Result, error) {
	files := layerFiles(artifacts)

	var res Result
	err := c.opts.Retry.Do(ctx, "build", func(ctx context.Context) error {
		res = Result{}
		if err := c.create(ctx, path, size, artifacts, remove); err != nil {
			return err
		}
		return c.compose(ctx, path, files, blends, &res)
	})
	if err != nil {
		return Result{}, err
	}
	output.Debug("document built", "path", path, "linked", res.Linked)
	return res, nil
}

func (c *Client) create(ctx context.Context, path string, size int, artifacts []Artifact, remove func() error) error {
	if err := c.svc.CloseIfOpen(ctx, path); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if remove != nil {
		if err := remove(); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	layers := make([]LayerFile, 0, len(artifacts))
	for _, a := range artifacts {
		layers = append(layers, LayerFile{Path: a.Path, Name: a.Layer, Index: a.Index})
	}
	if err := c.svc.CreateLayered(ctx, path, size, size, layers); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return nil
}

func layerFiles(artifacts []Artifact) map[string]string {
	files := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		files[a.Layer] = a.Path
	}
	return files
}

// Compose opens an existing document and links each layer named after an
// artifact's render layer to that artifact, applies its blend mode and a
// gamma adjustment, blacks out the background, then saves and closes it.
func (c *Client) Compose(ctx context.Context, path string, artifacts []Artifact, blends map[string]renderset.BlendMode) (Result, error) {
	files := layerFiles(artifacts)

	var res Result
	err := c.opts.Retry.Do(ctx, "compose", func(ctx context.Context) error {
		res = Result{}
		return c.compose(ctx, path, files, blends, &res)
	})
	if err != nil {
		return Result{}, err
	}
	output.Debug("document composed", "path", path, "linked", res.Linked)
	return res, nil
}

func (c *Client) compose(ctx context.Context, path string, files map[string]string, blends map[string]renderset.BlendMode, res *Result) error {
	doc, err := c.svc.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if err := doc.ConvertDepth(ctx, c.opts.ColorDepth); err != nil {
		return fmt.Errorf("converting %s to %d bits: %w", path, c.opts.ColorDepth, err)
	}

	layers, err := doc.Layers(ctx)
	if err != nil {
		return fmt.Errorf("listing layers of %s: %w", path, err)
	}

	for _, l := range layers {
		name := l.Name()
		if file, ok := files[name]; ok {
			if err := c.linkLayer(ctx, doc, l, file, blends[name], res); err != nil {
				return err
			}
			res.Linked = append(res.Linked, name)
			continue
		}
		if name == BackgroundLayer {
			if err := doc.FillSolid(ctx, l, [3]uint8{0, 0, 0}); err != nil {
				if IsBusy(err) {
					return err
				}
				output.Warn("could not fill background", "path", path, "error", err)
				continue
			}
			res.BackgroundFilled = true
		}
	}

	if err := doc.Save(ctx); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	if err := doc.Close(ctx); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func (c *Client) linkLayer(ctx context.Context, doc Document, l Layer, file string, mode renderset.BlendMode, res *Result) error {
	gamma := false
	for _, child := range Children(l) {
		if err := doc.SetActive(ctx, child); err != nil {
			return fmt.Errorf("selecting %s: %w", child.Name(), err)
		}
		if err := doc.LinkToFile(ctx, child, file); err != nil {
			return fmt.Errorf("linking %s to %s: %w", l.Name(), file, err)
		}
		if err := doc.SetBlendMode(ctx, l, mode); err != nil {
			return fmt.Errorf("setting blend mode of %s: %w", l.Name(), err)
		}
		output.Debug("layer linked", "layer", l.Name(), "blend", mode.String())

		if gamma {
			continue
		}
		if err := c.addGamma(ctx, doc, l); err != nil {
			if IsBusy(err) {
				return err
			}
			output.Warn("could not add gamma layer", "layer", l.Name(), "error", err)
			continue
		}
		gamma = true
		res.GammaLayers++
	}
	return nil
}

func (c *Client) addGamma(ctx context.Context, doc Document, l Layer) error {
	if err := doc.SetActive(ctx, FirstChild(l)); err != nil {
		return err
	}
	return doc.AddGamma(ctx, c.opts.Gamma)
}

// Flatten exports the document at docPath into a flat image at outPath.
func (c *Client) Flatten(ctx context.Context, docPath, outPath, format string) error {
	if format == "" {
		format = DefaultExportFormat
	}
	return c.opts.Retry.Do(ctx, "export", func(ctx context.Context) error {
		if err := c.svc.Export(ctx, docPath, outPath, format); err != nil {
			return fmt.Errorf("exporting %s: %w", docPath, err)
		}
		return nil
	})
}
