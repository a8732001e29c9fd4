package style_test

import (
	"testing"

	"github.com/dshills/textengine/internal/style"
)

func TestFromHexRoundTrip(t *testing.T) {
	c, err := style.FromHex("#ff0000")
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	if c.R < 0.99 || c.G > 0.01 || c.B > 0.01 {
		t.Fatalf("FromHex(#ff0000) = %+v, want pure red", c)
	}
}

func TestBlendMidpoint(t *testing.T) {
	black := style.RGBA{A: 1}
	white := style.RGBA{R: 1, G: 1, B: 1, A: 1}
	mid := style.Blend(black, white, 0.5)
	if mid.R < 0.3 || mid.R > 0.7 {
		t.Fatalf("Blend midpoint R = %v, want roughly 0.5", mid.R)
	}
}

func TestMergePatchOverridesExplicitFields(t *testing.T) {
	red := style.RGBA{R: 1, A: 1}
	blue := style.RGBA{B: 1, A: 1}
	base := style.Style{FG: &red, Attributes: style.AttrItalic}
	patch := style.Style{BG: &blue, Attributes: style.AttrBold}

	merged := style.Merge(base, patch)
	if merged.FG != &red {
		t.Fatalf("Merge should keep base.FG when patch.FG is nil")
	}
	if merged.BG != &blue {
		t.Fatalf("Merge should take patch.BG")
	}
	if !merged.Attributes.Has(style.AttrItalic) || !merged.Attributes.Has(style.AttrBold) {
		t.Fatalf("Merge should OR attributes, got %v", merged.Attributes)
	}
}
