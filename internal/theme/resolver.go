package theme

import (
	"math"

	"github.com/jmylchreest/tabtint/internal/colour"
)

const (
	// BrightnessThreshold is the luminance above which an accent takes dark text.
	BrightnessThreshold = 0.4

	// DarkStep and DarkerStep are the lightness reductions for the shade set.
	DarkStep   = 0.1
	DarkerStep = 0.2
)

// Alpha overlay levels. Bright accents get lighter overlays so they do not
// darken the chrome beneath them.
const (
	brightAlpha      = 0.15
	brightAlphaHeavy = 0.3
	darkAlpha        = 0.25
	darkAlphaHeavy   = 0.5
)

// Accent is a resolved accent colour with its readable foreground.
type Accent struct {
	Background colour.Color
	Foreground colour.Color
	Bright     bool
}

// Shades is the set of colours derived from an accent for chrome styling.
type Shades struct {
	Dark       colour.Color
	Darker     colour.Color
	Alpha      colour.Color
	AlphaHeavy colour.Color
}

// ResolveAccent picks the accent for a tab. The first palette colour replaces
// base when present. Saturation is scaled by saturationLimit, clamped to
// [0, 1]. A NaN limit leaves saturation untouched.
func ResolveAccent(base colour.Color, palette []colour.Color, saturationLimit float64) Accent {
	accent := base
	if len(palette) > 0 {
		accent = palette[0]
	}

	limit := 1.0
	if !math.IsNaN(saturationLimit) {
		limit = min(max(saturationLimit, 0), 1)
	}
	accent = accent.ScaleSaturation(limit).WithAlpha(1)

	fg, bright := Classify(accent)
	return Accent{
		Background: accent,
		Foreground: fg,
		Bright:     bright,
	}
}

// Classify returns the foreground for c and whether c counts as bright.
func Classify(c colour.Color) (colour.Color, bool) {
	if c.Luminance() > BrightnessThreshold {
		return colour.Black, true
	}
	return colour.White, false
}

// Shades derives darker and translucent variants of the accent background.
func (a Accent) Shades() Shades {
	alpha, heavy := darkAlpha, darkAlphaHeavy
	if a.Bright {
		alpha, heavy = brightAlpha, brightAlphaHeavy
	}

	return Shades{
		Dark:       a.Background.Darken(DarkStep),
		Darker:     a.Background.Darken(DarkerStep),
		Alpha:      a.Background.WithAlpha(alpha),
		AlphaHeavy: a.Background.WithAlpha(heavy),
	}
}
