package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/jmylchreest/tabtint/internal/browser"
	"github.com/jmylchreest/tabtint/internal/style"
	"github.com/jmylchreest/tabtint/internal/theme"
)

type fakeHost struct {
	mu       sync.Mutex
	tabs     map[int]browser.Tab
	groups   map[string][]browser.Tab
	themeID  string
	system   []theme.Theme
	user     []theme.Theme
	prefsErr error
}

func (h *fakeHost) Tab(_ context.Context, id int) (browser.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tab, ok := h.tabs[id]
	if !ok {
		return browser.Tab{}, browser.ErrTabNotFound
	}
	return tab, nil
}

func (h *fakeHost) GroupTabs(_ context.Context, id string) ([]browser.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tabs, ok := h.groups[id]
	if !ok {
		return nil, browser.ErrTabNotFound
	}
	return tabs, nil
}

func (h *fakeHost) CurrentThemeID(context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.themeID, h.prefsErr
}

func (h *fakeHost) SystemThemes(context.Context) ([]theme.Theme, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.system, nil
}

func (h *fakeHost) UserThemes(context.Context) ([]theme.Theme, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.user, nil
}

func (h *fakeHost) setTheme(t theme.Theme) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.themeID = t.ID
	h.user = []theme.Theme{t}
}

type fakeView struct {
	dataID  string
	active  bool
	favicon image.Image
	style   *style.Recorder
}

func (v *fakeView) Active() bool { return v.active }
func (v *fakeView) Favicon() image.Image { return v.favicon }
func (v *fakeView) DataID() string { return v.dataID }
func (v *fakeView) Style() style.Sink { return v.style }

func (v *fakeView) get(name string) string {
	value, _ := v.style.Get(name)
	return value
}

type fakeStrip struct {
	views []*fakeView
	root  *style.Recorder
}

func (s *fakeStrip) Tabs() []browser.TabView {
	out := make([]browser.TabView, len(s.views))
	for i, v := range s.views {
		out[i] = v
	}
	return out
}

func (s *fakeStrip) Root() style.Sink { return s.root }

func newView(dataID string, active bool, favicon image.Image) *fakeView {
	return &fakeView{dataID: dataID, active: active, favicon: favicon, style: style.NewRecorder()}
}

func solidIcon(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

var errPrefs = errors.New("preferences unavailable")
