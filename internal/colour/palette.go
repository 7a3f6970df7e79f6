package colour

import (
	"encoding/json"
	"fmt"
)

// Entry is one palette colour together with the number of pixels it covered.
type Entry struct {
	Color Color
	Count int
}

// Palette is an ordered list of colours, most frequent first.
type Palette struct {
	Entries []Entry
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

// Colors returns the palette colours in order.
func (p *Palette) Colors() []Color {
	colors := make([]Color, p.Len())
	for i := range colors {
		colors[i] = p.Entries[i].Color
	}
	return colors
}

// Dominant returns the most frequent colour, if any.
func (p *Palette) Dominant() (Color, bool) {
	if p.Len() == 0 {
		return Color{}, false
	}
	return p.Entries[0].Color, true
}

// ToHex converts the palette colours to hex strings.
// Returns a slice of hex color codes (e.g., ["#1a2b3c", "#4d5e6f"]).
func (p *Palette) ToHex() []string {
	hexColors := make([]string, p.Len())
	for i := range hexColors {
		hexColors[i] = p.Entries[i].Color.Hex()
	}
	return hexColors
}

// RGB is the JSON form of a colour's channels.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ColorJSON represents a color in JSON output format.
type ColorJSON struct {
	Hex   string `json:"hex"`
	RGB   RGB    `json:"rgb"`
	Count int    `json:"count"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count  int         `json:"count"`
	Colors []ColorJSON `json:"colors"`
}

// ToJSON converts the palette to JSON format.
func (p *Palette) ToJSON() ([]byte, error) {
	colors := make([]ColorJSON, p.Len())
	for i := range colors {
		e := p.Entries[i]
		colors[i] = ColorJSON{
			Hex:   e.Color.Hex(),
			RGB:   RGB{R: e.Color.R, G: e.Color.G, B: e.Color.B},
			Count: e.Count,
		}
	}

	return json.MarshalIndent(PaletteJSON{
		Count:  len(colors),
		Colors: colors,
	}, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if p.Len() == 0 {
		return "Empty palette"
	}

	result := fmt.Sprintf("Palette with %d colors:\n", p.Len())
	for i, e := range p.Entries {
		result += fmt.Sprintf("  %2d: %s (%s) x%d\n", i+1, e.Color.Hex(), e.Color.String(), e.Count)
	}
	return result
}
