// Package renderer defines the lightmap renderer contract and an
// implementation that shells out to an external bake command.
package renderer

import (
	"context"
	"path/filepath"

	"github.com/lightbake/lbake/internal/renderset"
)

// DefaultExtension is the file extension of per-layer lightmaps.
const DefaultExtension = "tif"

// Request describes one lightmap bake: one render set's objects rendered in
// one render layer into one artifact file.
type Request struct {
	Objects      []string
	UVSet        string
	Resolution   int
	Padding      float64
	Layer        string
	ArtifactName string
	OutputDir    string
	Extension    string
	LayoutUVs    bool
	ColorMode    renderset.ColorMode
}

// OutputPath is where the renderer is expected to leave the artifact.
func (r Request) OutputPath() string {
	ext := r.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	return filepath.Join(r.OutputDir, r.ArtifactName+"."+ext)
}

// Service bakes lightmaps. A nil error does not guarantee an artifact was
// written; callers check OutputPath.
type Service interface {
	Bake(ctx context.Context, req Request) error
}

// SnapshotRequest describes a UV layout preview for a render set.
type SnapshotRequest struct {
	Objects    []string
	UVSet      string
	Resolution int
	Path       string
}

// UVSnapshotter is implemented by renderers that can export UV previews.
type UVSnapshotter interface {
	UVSnapshot(ctx context.Context, req SnapshotRequest) error
}
