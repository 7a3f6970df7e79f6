package theme

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/tabtint/internal/colour"
)

// PageKind classifies the page shown in a tab.
type PageKind int

const (
	// PageWeb is ordinary web content.
	PageWeb PageKind = iota
	// PageInternal is a browser or extension owned page.
	PageInternal
)

// String returns the page kind name.
func (k PageKind) String() string {
	if k == PageInternal {
		return "internal"
	}
	return "web"
}

// AccentSource selects where a web page's accent comes from.
type AccentSource string

const (
	// SourceFavicon derives the accent from the favicon palette.
	SourceFavicon AccentSource = "favicon"
	// SourceBrowser uses the theme colour the browser reports for the page.
	SourceBrowser AccentSource = "browser"
)

// ParseAccentSource validates an accent source name. Empty means favicon.
func ParseAccentSource(s string) (AccentSource, error) {
	switch AccentSource(strings.ToLower(s)) {
	case SourceFavicon, "":
		return SourceFavicon, nil
	case SourceBrowser:
		return SourceBrowser, nil
	default:
		return "", fmt.Errorf("invalid accent source: %s (valid: %s, %s)", s, SourceFavicon, SourceBrowser)
	}
}

// DefaultInternalPrefixes are the URL prefixes of browser-owned pages.
var DefaultInternalPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"vivaldi://",
	"devtools://",
	"edge://",
	"brave://",
	"about:",
	"view-source:",
	"file://",
}

// IsInternalURL reports whether url starts with a built-in or extra internal prefix.
func IsInternalURL(url string, extra []string) bool {
	lower := strings.ToLower(strings.TrimSpace(url))
	for _, prefixes := range [][]string{DefaultInternalPrefixes, extra} {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(lower, strings.ToLower(p)) {
				return true
			}
		}
	}
	return false
}

// KindOf classifies url.
func KindOf(url string, extra []string) PageKind {
	if IsInternalURL(url, extra) {
		return PageInternal
	}
	return PageWeb
}

// Pair is a background and foreground written onto a tab.
type Pair struct {
	Background colour.Color
	Foreground colour.Color
}

// Request is everything the resolver needs for one tab.
type Request struct {
	Theme  Theme
	Kind   PageKind
	Source AccentSource

	// Palette is the favicon palette, most frequent first. May be empty.
	Palette []colour.Color

	// PageColor is the browser-reported theme colour of the page, if any.
	PageColor *colour.Color
}

// Result is the resolved colouring for one tab.
type Result struct {
	// Accent and Shades drive the shared custom properties.
	Accent Accent
	Shades Shades

	// Tab is the pair written onto the tab itself.
	Tab Pair

	Internal bool
}

// Resolve computes the accent and tab colours for a request.
// Internal pages always get the theme's neutral pair; their accent is the
// theme accent. Web pages take their accent from the configured source and
// fall back to the theme accent when that source has nothing.
func Resolve(req Request) Result {
	t := req.Theme

	if req.Kind == PageInternal {
		accent := ResolveAccent(t.Accent, nil, t.SaturationLimit)
		return Result{
			Accent:   accent,
			Shades:   accent.Shades(),
			Tab:      Pair{Background: t.Background, Foreground: t.Foreground},
			Internal: true,
		}
	}

	var palette []colour.Color
	switch req.Source {
	case SourceBrowser:
		if req.PageColor != nil {
			palette = []colour.Color{*req.PageColor}
		}
	default:
		palette = req.Palette
	}

	accent := ResolveAccent(t.Accent, palette, t.SaturationLimit)
	return Result{
		Accent: accent,
		Shades: accent.Shades(),
		Tab:    Pair{Background: accent.Background, Foreground: accent.Foreground},
	}
}
