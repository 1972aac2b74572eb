// Package renderset holds the render set data model: named groups of meshes
// baked together into one light map per render layer.
package renderset

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is an index into ResolutionSizes.
type Resolution int

// ResolutionSizes are the supported light map edge lengths in pixels.
var ResolutionSizes = []int{64, 128, 256, 512, 1024, 2048}

// Pixels returns the edge length for the resolution index.
func (r Resolution) Pixels() int {
	if !r.Valid() {
		return 0
	}
	return ResolutionSizes[r]
}

// Valid reports whether r indexes ResolutionSizes.
func (r Resolution) Valid() bool {
	return r >= 0 && int(r) < len(ResolutionSizes)
}

func (r Resolution) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
	return fmt.Sprintf("%d", r.Pixels())
}

// ParseResolution accepts either a pixel size ("1024") or an index ("4").
func ParseResolution(s string) (Resolution, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err == nil {
		for i, px := range ResolutionSizes {
			if n == px {
				return Resolution(i), nil
			}
		}
		if Resolution(n).Valid() {
			return Resolution(n), nil
		}
	}
	return 0, fmt.Errorf("unknown resolution %q (want one of %v)", s, ResolutionSizes)
}

// ColorMode selects what the legacy renderer writes into the light map.
type ColorMode int

const (
	ColorLightAndColor ColorMode = iota
	ColorOnlyLight
	ColorOnlyGlobalIllumination
	ColorOcclusion
)

var colorModeNames = []string{"Light and Color", "Only Light", "Only Global Illumination", "Occlusion"}

// Valid reports whether c is a known color mode.
func (c ColorMode) Valid() bool {
	return c >= 0 && int(c) < len(colorModeNames)
}

func (c ColorMode) String() string {
	if !c.Valid() {
		return fmt.Sprintf("ColorMode(%d)", int(c))
	}
	return colorModeNames[c]
}

// ParseColorMode accepts a color mode name, case-insensitively, or its index.
func ParseColorMode(s string) (ColorMode, error) {
	for i, name := range colorModeNames {
		if strings.EqualFold(s, name) {
			return ColorMode(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && ColorMode(n).Valid() {
		return ColorMode(n), nil
	}
	return 0, fmt.Errorf("unknown color mode %q (want one of %q)", s, colorModeNames)
}

// BlendMode is how a baked layer combines with the layers below it.
type BlendMode int

const (
	BlendAdditive BlendMode = iota
	BlendMultiply
)

var blendModeNames = []string{"Additive", "Multiply"}

// Valid reports whether b is a known blend mode.
func (b BlendMode) Valid() bool {
	return b >= 0 && int(b) < len(blendModeNames)
}

func (b BlendMode) String() string {
	if !b.Valid() {
		return fmt.Sprintf("BlendMode(%d)", int(b))
	}
	return blendModeNames[b]
}

// ParseBlendMode parses a blend mode name, case-insensitively.
func ParseBlendMode(s string) (BlendMode, error) {
	for i, name := range blendModeNames {
		if strings.EqualFold(s, name) {
			return BlendMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown blend mode %q (want Additive or Multiply)", s)
}

// UVChannel is an index into UVSetNames.
type UVChannel int

const (
	UVPrimary UVChannel = iota
	UVSecondary
	UVTertiary
)

// UVSetNames are the scene names of the three supported UV channels.
var UVSetNames = []string{"map1", "uvSet", "uvSet1"}

// Valid reports whether c indexes UVSetNames.
func (c UVChannel) Valid() bool {
	return c >= 0 && int(c) < len(UVSetNames)
}

// Name returns the scene UV set name for the channel.
func (c UVChannel) Name() string {
	if !c.Valid() {
		return ""
	}
	return UVSetNames[c]
}

func (c UVChannel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("UVChannel(%d)", int(c))
	}
	return UVSetNames[c]
}

// ChannelForName maps a scene UV set name back to its channel.
func ChannelForName(name string) (UVChannel, bool) {
	for i, n := range UVSetNames {
		if n == name {
			return UVChannel(i), true
		}
	}
	return UVPrimary, false
}

// ParseUVChannel accepts a UV set name or channel index.
func ParseUVChannel(s string) (UVChannel, error) {
	if c, ok := ChannelForName(s); ok {
		return c, nil
	}
	if n, err := strconv.Atoi(s); err == nil && UVChannel(n).Valid() {
		return UVChannel(n), nil
	}
	return 0, fmt.Errorf("unknown UV set %q (want one of %v)", s, UVSetNames)
}

// Defaults for newly created render sets.
const (
	DefaultResolution       Resolution = 4
	DefaultColorMode                   = ColorLightAndColor
	DefaultFillTextureSeams            = 3.0
	DefaultLightMapPrefix              = "BAKE"
	MaxFillTextureSeams                = 10.0

	// LockedSuffix marks a render set whose light maps go to the locked slot.
	LockedSuffix = "_LOCKED"
)

// LayerStack maps render layer names to blend modes in compositing order.
type LayerStack = OrderedMap[BlendMode]

// NewLayerStack returns an empty LayerStack.
func NewLayerStack() *LayerStack {
	return NewOrderedMap[BlendMode]()
}

// RenderSet is one group of objects baked together.
type RenderSet struct {
	Resolution       Resolution
	ColorMode        ColorMode
	FillTextureSeams float64
	LightMapPrefix   string
	RenderMe         bool
	LayoutUVs        bool

	// Objects maps object identifiers to UV channels. Nil means the set has
	// never been populated, which is distinct from an empty map.
	Objects map[string]UVChannel

	// RenderLayers is nil until the first layer is added.
	RenderLayers *LayerStack
}

// New returns a render set with default settings and no members.
func New() *RenderSet {
	return &RenderSet{
		Resolution:       DefaultResolution,
		ColorMode:        DefaultColorMode,
		FillTextureSeams: DefaultFillTextureSeams,
		LightMapPrefix:   DefaultLightMapPrefix,
		RenderMe:         true,
	}
}

// Clone returns a deep copy.
func (s *RenderSet) Clone() *RenderSet {
	if s == nil {
		return nil
	}
	out := *s
	if s.Objects != nil {
		out.Objects = make(map[string]UVChannel, len(s.Objects))
		for k, v := range s.Objects {
			out.Objects[k] = v
		}
	}
	out.RenderLayers = s.RenderLayers.Clone(nil)
	return &out
}

// IsLocked reports whether name carries the locked suffix, case-insensitively.
func IsLocked(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(LockedSuffix))
}

// ArtifactName returns the base name of the light map baked for layer.
func (s *RenderSet) ArtifactName(setName, layer string) string {
	return fmt.Sprintf("%s_%s_%s_LM", s.LightMapPrefix, setName, layer)
}

// ObjectNames returns the object identifiers sorted by name.
func (s *RenderSet) ObjectNames() []string {
	return sortedKeys(s.Objects)
}

// LayerNames returns the render layer names in stack order.
func (s *RenderSet) LayerNames() []string {
	return s.RenderLayers.Keys()
}
