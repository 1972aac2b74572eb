package bake

import (
	"path/filepath"
	"strings"
)

// Directory names under the project's texture folder.
const (
	TexturesDir  = "textures"
	LightMapDir  = "lightMap"
	ExportDir    = "LM"
	SnapshotsDir = "uvSnapshots"
)

// Layout derives every file path a bake reads or writes from the project root.
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// TextureDir is {root}/textures.
func (l Layout) TextureDir() string {
	return filepath.Join(l.Root, TexturesDir)
}

// LightMapDir holds per-layer lightmaps and composite documents.
func (l Layout) LightMapDir() string {
	return filepath.Join(l.TextureDir(), LightMapDir)
}

// ExportDir holds flattened lightmaps.
func (l Layout) ExportDir() string {
	return filepath.Join(l.TextureDir(), ExportDir)
}

// SnapshotDir holds UV layout previews.
func (l Layout) SnapshotDir() string {
	return filepath.Join(l.TextureDir(), SnapshotsDir)
}

// Dirs returns every directory a bake writes into.
func (l Layout) Dirs() []string {
	return []string{l.LightMapDir(), l.ExportDir(), l.SnapshotDir()}
}

// DocumentPath is the composite document of a render set.
func (l Layout) DocumentPath(set, ext string) string {
	return filepath.Join(l.LightMapDir(), set+"."+ext)
}

// ExportPath is the flattened image of a render set.
func (l Layout) ExportPath(prefix, set, suffix, format string) string {
	return filepath.Join(l.ExportDir(), ExportName(prefix, set, suffix)+"."+format)
}

// SnapshotPath is the UV preview of a render set.
func (l Layout) SnapshotPath(set string) string {
	return filepath.Join(l.SnapshotDir(), set+"_uvSnap.png")
}

// ExportName joins prefix, set and suffix with underscores. A prefix that
// already ends in "_" or a suffix that already starts with one is used as is,
// so "Env_" and "Kitchen" give "Env_Kitchen".
func ExportName(prefix, set, suffix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	if suffix != "" && !strings.HasPrefix(suffix, "_") {
		suffix = "_" + suffix
	}
	return prefix + set + suffix
}
