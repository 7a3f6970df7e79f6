package colour

import (
	"github.com/charmbracelet/lipgloss"
)

const defaultSwatchWidth = 8

// Swatch renders text on a block of colour c for terminal previews.
// The text colour is whichever of black or white contrasts better with c.
func Swatch(c Color, text string, width int) string {
	if width <= 0 {
		width = defaultSwatchWidth
	}
	if len(text) > width {
		text = text[:width]
	}

	fg := White
	if ContrastRatio(c, Black) > ContrastRatio(c, White) {
		fg = Black
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Hex())).
		Foreground(lipgloss.Color(fg.Hex())).
		Width(width).
		Align(lipgloss.Center).
		Render(text)
}
