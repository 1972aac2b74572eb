// Package compositor drives the external image-editing application that
// stacks per-layer lightmaps into a layered document and flattens it.
package compositor

import (
	"context"
	"errors"

	"github.com/lightbake/lbake/internal/renderset"
)

// ErrBusy is reported by a Service when the application is temporarily
// unable to take commands. It is the only retryable error.
var ErrBusy = errors.New("compositor busy")

// BackgroundLayer is the name of the document's base layer.
const BackgroundLayer = "Background"

// Default document settings.
const (
	DefaultColorDepth        = 32
	DefaultGamma             = 0.4545
	DefaultDocumentExtension = "psd"
	DefaultExportFormat      = "png"
)

// LayerFile places one artifact into a new layered document.
type LayerFile struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Service is the automation surface of the compositing application.
type Service interface {
	// CloseIfOpen closes the document at path without saving, if open.
	CloseIfOpen(ctx context.Context, path string) error

	// CreateLayered writes a new document of the given size with one layer
	// per file, stacked by Index (0 on top).
	CreateLayered(ctx context.Context, path string, width, height int, layers []LayerFile) error

	Open(ctx context.Context, path string) (Document, error)

	// Export flattens the document at docPath into outPath.
	Export(ctx context.Context, docPath, outPath, format string) error
}

// Document is an open layered document.
type Document interface {
	ConvertDepth(ctx context.Context, bits int) error
	Layers(ctx context.Context) ([]Layer, error)
	SetActive(ctx context.Context, l Layer) error
	LinkToFile(ctx context.Context, l Layer, file string) error
	SetBlendMode(ctx context.Context, l Layer, mode renderset.BlendMode) error

	// AddGamma inserts a gamma adjustment layer above the active layer.
	AddGamma(ctx context.Context, gamma float64) error

	FillSolid(ctx context.Context, l Layer, rgb [3]uint8) error
	Save(ctx context.Context) error
	Close(ctx context.Context) error
}

// Layer is any document layer.
type Layer interface {
	Name() string
}

// IndexedGroup is a group whose children are addressed by position.
type IndexedGroup interface {
	Layer
	Count() int
	At(i int) Layer
}

// NamedGroup is a group exposing its children as a collection.
type NamedGroup interface {
	Layer
	ChildLayers() []Layer
}

// Children returns the sub-layers of l. A plain layer is its own only child.
func Children(l Layer) []Layer {
	switch g := l.(type) {
	case IndexedGroup:
		if n := g.Count(); n > 0 {
			out := make([]Layer, 0, n)
			for i := 0; i < n; i++ {
				out = append(out, g.At(i))
			}
			return out
		}
	case NamedGroup:
		if c := g.ChildLayers(); len(c) > 0 {
			return c
		}
	}
	return []Layer{l}
}

// FirstChild returns the first sub-layer of a group, or l itself when it
// has none.
func FirstChild(l Layer) Layer {
	return Children(l)[0]
}
