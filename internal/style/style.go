// Package style holds the RGBA color and attribute record shared by
// styled-text input (setStyledText), syntax highlight spans, and rendered
// virtual-line chunks. Colors are plain [0,1] floats at rest, matching the
// external interface's wire format; colorful.Color is used at the edges
// (blending, hex parsing) where float-accurate color math actually matters.
package style

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is a color in linear [0,1] component space, matching the external
// interface's styled-chunk wire format exactly.
type RGBA struct {
	R, G, B, A float32
}

// Colorful converts c to a go-colorful Color for blending or distance
// calculations. Alpha is dropped; callers that need it carry it separately.
func (c RGBA) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

// FromColorful builds an RGBA from a go-colorful Color at full opacity.
func FromColorful(c colorful.Color) RGBA {
	return RGBA{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: 1}
}

// FromHex parses a "#rrggbb" string into an RGBA at full opacity.
func FromHex(hex string) (RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGBA{}, fmt.Errorf("style: %w", err)
	}
	return FromColorful(c), nil
}

// Blend linearly interpolates two colors in Lab space (via go-colorful),
// which tracks human perception of color distance better than interpolating
// R/G/B components directly. Alpha is blended linearly.
func Blend(a, b RGBA, t float64) RGBA {
	blended := a.Colorful().BlendLab(b.Colorful(), t)
	out := FromColorful(blended)
	out.A = a.A + float32(t)*(b.A-a.A)
	return out
}

// Attribute is a bitmask of text attributes, matching the external
// interface's attribute encoding exactly: 1=bold, 2=dim, 4=italic,
// 8=underline, 16=blink, 32=inverse, 64=hidden, 128=strikethrough.
type Attribute uint8

const (
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrInverse
	AttrHidden
	AttrStrikethrough
)

// Has reports whether attr is set in a.
func (a Attribute) Has(attr Attribute) bool { return a&attr != 0 }

// Style is the full visual style of a run of text: foreground/background
// color (nil means "inherit terminal default") plus an attribute mask.
type Style struct {
	FG         *RGBA
	BG         *RGBA
	Attributes Attribute
}

// Merge layers patch on top of base: any field patch sets explicitly
// (non-nil colors, any attribute bits) wins; everything else falls through
// to base. Used to combine a line's syntax-highlight style with a
// character-range highlight applied on top of it.
func Merge(base, patch Style) Style {
	out := base
	if patch.FG != nil {
		out.FG = patch.FG
	}
	if patch.BG != nil {
		out.BG = patch.BG
	}
	out.Attributes |= patch.Attributes
	return out
}
