// Package style turns resolved tab colours into CSS property writes.
//
// Planning is pure: PlanFor maps a resolved theme result onto the properties
// a tab and the document root should carry. Apply and Reset are the only
// functions that touch a Sink.
package style

import (
	"github.com/jmylchreest/tabtint/internal/theme"
)

// Custom properties shared by all browser chrome that follows the active tab's accent.
const (
	PropAccentBg           = "--colorAccentBg"
	PropAccentFg           = "--colorAccentFg"
	PropAccentBgDark       = "--colorAccentBgDark"
	PropAccentBgDarker     = "--colorAccentBgDarker"
	PropAccentBgAlpha      = "--colorAccentBgAlpha"
	PropAccentBgAlphaHeavy = "--colorAccentBgAlphaHeavy"
)

// Inline properties written on each tab.
const (
	PropBackground = "background-color"
	PropForeground = "color"
)

// SharedProperties lists the custom properties in the order they are written.
var SharedProperties = []string{
	PropAccentBg,
	PropAccentFg,
	PropAccentBgDark,
	PropAccentBgDarker,
	PropAccentBgAlpha,
	PropAccentBgAlphaHeavy,
}

// Sink is an inline style declaration block, such as an element's style attribute.
type Sink interface {
	SetProperty(name, value string)
	RemoveProperty(name string)
}

// Property is a single CSS declaration.
type Property struct {
	Name  string
	Value string
}

// Plan is the set of writes for one tab.
type Plan struct {
	// Tab holds declarations for the tab element.
	Tab []Property

	// Shared holds custom property declarations for the document root.
	// Only the active tab has them.
	Shared []Property
}

// PlanFor builds the writes for a tab from its resolved colours.
//
// The active tab publishes its accent and shades to the shared properties.
// With AccentOnWindow the window frame carries the accent, so the active tab
// itself takes the theme's neutral pair. Inactive tabs only style themselves.
func PlanFor(active bool, t theme.Theme, res theme.Result) Plan {
	pair := res.Tab
	if active && t.AccentOnWindow {
		pair = theme.Pair{Background: t.Background, Foreground: t.Foreground}
	}

	plan := Plan{
		Tab: []Property{
			{Name: PropBackground, Value: pair.Background.CSS()},
			{Name: PropForeground, Value: pair.Foreground.CSS()},
		},
	}

	if active {
		plan.Shared = []Property{
			{Name: PropAccentBg, Value: res.Accent.Background.CSS()},
			{Name: PropAccentFg, Value: res.Accent.Foreground.CSS()},
			{Name: PropAccentBgDark, Value: res.Shades.Dark.CSS()},
			{Name: PropAccentBgDarker, Value: res.Shades.Darker.CSS()},
			{Name: PropAccentBgAlpha, Value: res.Shades.Alpha.CSS()},
			{Name: PropAccentBgAlphaHeavy, Value: res.Shades.AlphaHeavy.CSS()},
		}
	}

	return plan
}

// Apply writes a plan. root may be nil when the plan has no shared properties.
func Apply(plan Plan, tab, root Sink) {
	for _, p := range plan.Tab {
		tab.SetProperty(p.Name, p.Value)
	}
	if root == nil {
		return
	}
	for _, p := range plan.Shared {
		root.SetProperty(p.Name, p.Value)
	}
}

// Reset removes every explicit tab colour and the shared accent properties,
// returning the strip to the browser's own styling.
func Reset(tabs []Sink, root Sink) {
	for _, tab := range tabs {
		tab.RemoveProperty(PropBackground)
		tab.RemoveProperty(PropForeground)
	}
	if root == nil {
		return
	}
	for _, name := range SharedProperties {
		root.RemoveProperty(name)
	}
}
