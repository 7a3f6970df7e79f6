// Package theme holds browser theme snapshots and resolves tab accent colours from them.
package theme

import (
	"fmt"

	"github.com/jmylchreest/tabtint/internal/colour"
)

// Theme is a read-only snapshot of the browser's current theme preferences.
// It is read fresh for every recompute and never cached between passes.
type Theme struct {
	ID   string
	Name string

	// Accent is the theme's configured accent, used when no page colour is available.
	Accent colour.Color

	// Background and Foreground form the neutral pair used for internal pages.
	Background colour.Color
	Foreground colour.Color

	// AccentFromPage enables deriving the accent from the page favicon.
	AccentFromPage bool

	// TransparentTabs disables explicit tab colouring.
	TransparentTabs bool

	// SaturationLimit scales extracted accent saturation, 0 to 1.
	SaturationLimit float64

	// AccentOnWindow paints the accent on the window frame rather than the active tab.
	AccentOnWindow bool
}

// ColouringEnabled reports whether tabs should carry explicit colours at all.
func (t Theme) ColouringEnabled() bool {
	return t.AccentFromPage && !t.TransparentTabs
}

// Validate checks the snapshot is usable.
func (t Theme) Validate() error {
	if !(t.SaturationLimit >= 0 && t.SaturationLimit <= 1) {
		return fmt.Errorf("theme %q: saturation limit %v out of range [0, 1]", t.ID, t.SaturationLimit)
	}
	if t.Background == t.Foreground {
		return fmt.Errorf("theme %q: background and foreground are identical", t.ID)
	}
	return nil
}

// DefaultDark returns the built-in dark theme.
func DefaultDark() Theme {
	return Theme{
		ID:              "default-dark",
		Name:            "Dark",
		Accent:          colour.New(0x3b, 0x5e, 0xa8),
		Background:      colour.New(0x25, 0x25, 0x25),
		Foreground:      colour.New(0xf2, 0xf2, 0xf2),
		AccentFromPage:  true,
		SaturationLimit: 1,
	}
}

// DefaultLight returns the built-in light theme.
func DefaultLight() Theme {
	return Theme{
		ID:              "default-light",
		Name:            "Light",
		Accent:          colour.New(0x5c, 0x85, 0xd6),
		Background:      colour.New(0xf5, 0xf5, 0xf5),
		Foreground:      colour.New(0x1a, 0x1a, 0x1a),
		AccentFromPage:  true,
		SaturationLimit: 1,
	}
}

// Select returns the theme named by currentID, searching user themes before
// system themes. An unknown id yields fallback.
func Select(currentID string, system, user []Theme, fallback Theme) Theme {
	for _, t := range user {
		if t.ID == currentID {
			return t
		}
	}
	for _, t := range system {
		if t.ID == currentID {
			return t
		}
	}
	return fallback
}
