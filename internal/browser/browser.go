// Package browser defines the host collaborators tabtint works against:
// tab lookup, theme preferences, the tab strip and its change events.
package browser

import (
	"context"
	"errors"
	"image"

	"github.com/jmylchreest/tabtint/internal/style"
	"github.com/jmylchreest/tabtint/internal/theme"
)

// ErrTabNotFound is returned when a tab or group no longer exists.
var ErrTabNotFound = errors.New("tab not found")

// Tab is what the host reports about an open tab.
type Tab struct {
	ID  int
	URL string

	// ThemeColor is the page's declared theme colour as a CSS hex string, if any.
	ThemeColor string

	// ExtData is the host's JSON extension data, which carries group membership.
	ExtData string
}

// TabStore looks tabs up by id.
type TabStore interface {
	// Tab returns the tab with the given id, or ErrTabNotFound.
	Tab(ctx context.Context, id int) (Tab, error)

	// GroupTabs returns the tabs belonging to a group, or ErrTabNotFound.
	GroupTabs(ctx context.Context, groupID string) ([]Tab, error)
}

// PreferenceStore exposes the theme preferences.
type PreferenceStore interface {
	CurrentThemeID(ctx context.Context) (string, error)
	SystemThemes(ctx context.Context) ([]theme.Theme, error)
	UserThemes(ctx context.Context) ([]theme.Theme, error)
}

// TabView is one entry in the tab strip.
type TabView interface {
	// Active reports whether the entry is the selected tab.
	Active() bool

	// Favicon returns the decoded favicon, or nil when the tab has none.
	Favicon() image.Image

	// DataID is the entry's data attribute naming its tab or group.
	DataID() string

	// Style is the entry's inline style.
	Style() style.Sink
}

// TabStrip is the live collection of tab views.
type TabStrip interface {
	Tabs() []TabView

	// Root is the document-level style holding shared custom properties.
	Root() style.Sink
}

// EventKind names a change that should trigger a recompute.
type EventKind int

const (
	TabCreated EventKind = iota
	TabActivated
	// TabUpdated covers favicon and theme colour changes.
	TabUpdated
	PreferenceChanged
	StripMutated
)

var eventNames = map[EventKind]string{
	TabCreated:        "tab-created",
	TabActivated:      "tab-activated",
	TabUpdated:        "tab-updated",
	PreferenceChanged: "preference-changed",
	StripMutated:      "strip-mutated",
}

// String returns the event kind name.
func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is a host notification.
type Event struct {
	Kind EventKind

	// Path is the dotted preference path for PreferenceChanged events.
	Path string

	// TabID is set for tab events when known.
	TabID int
}

// EventSource delivers host events to a subscriber.
type EventSource interface {
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn func(Event)) (unsubscribe func())
}
