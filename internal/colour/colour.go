// Package colour provides colour values, favicon palette extraction and
// the conversions needed to derive tab themes from them.
package colour

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an immutable RGB colour with an alpha component.
// HSL components are derived on demand, every operation returns a new value.
type Color struct {
	R uint8   `json:"r"`
	G uint8   `json:"g"`
	B uint8   `json:"b"`
	A float64 `json:"a"`
}

var (
	// Black is opaque black.
	Black = New(0, 0, 0)

	// White is opaque white.
	White = New(255, 255, 255)
)

// New returns an opaque colour.
func New(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// FromStdColor converts a color.Color into a Color.
// Premultiplied values are converted back to straight alpha first.
func FromStdColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: float64(n.A) / 255.0}
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa". The leading '#' is optional.
func ParseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid hex colour %q: expected 3, 6 or 8 hex digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	if len(hex) == 8 {
		return Color{
			R: uint8(v >> 24),
			G: uint8(v >> 16),
			B: uint8(v >> 8),
			A: float64(uint8(v)) / 255.0,
		}, nil
	}
	return New(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.alpha8()}.RGBA()
}

// alpha8 returns the alpha component scaled to 0-255.
func (c Color) alpha8() uint8 {
	return uint8(clamp01(c.A)*255 + 0.5)
}

// Opaque reports whether the colour has full alpha.
func (c Color) Opaque() bool {
	return c.A >= 1
}

// HSL returns hue (0-360), saturation (0-1) and lightness (0-1).
func (c Color) HSL() (h, s, l float64) {
	return c.colorful().Hsl()
}

// WithSaturation returns the colour with its saturation replaced.
func (c Color) WithSaturation(s float64) Color {
	h, _, l := c.HSL()
	return fromColorful(colorful.Hsl(h, clamp01(s), l), c.A)
}

// ScaleSaturation multiplies the saturation by factor.
// A factor of 1 returns the colour unchanged, 0 produces a grey of equal lightness.
func (c Color) ScaleSaturation(factor float64) Color {
	if factor == 1 {
		return c
	}
	_, s, _ := c.HSL()
	return c.WithSaturation(s * factor)
}

// Darken lowers the lightness by amount.
func (c Color) Darken(amount float64) Color {
	h, s, l := c.HSL()
	return fromColorful(colorful.Hsl(h, s, clamp01(l-amount)), c.A)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255.0, G: float64(c.G) / 255.0, B: float64(c.B) / 255.0}
}

// fromColorful rounds a go-colorful value back to 8-bit channels.
func fromColorful(cf colorful.Color, alpha float64) Color {
	r, g, b := cf.Clamped().RGB255()
	return Color{R: r, G: g, B: b, A: alpha}
}

// WithAlpha returns the colour with alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

// Luminance returns the WCAG 2.0 relative luminance of the colour.
func (c Color) Luminance() float64 {
	return Luminance(c)
}

// Hex returns the colour as "#rrggbb", ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String returns the colour in the format "rgb(r, g, b)".
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// CSS returns a CSS colour value: hex when opaque, rgba() otherwise.
func (c Color) CSS() string {
	if c.Opaque() {
		return c.Hex()
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(clamp01(c.A), 'f', -1, 64))
}
