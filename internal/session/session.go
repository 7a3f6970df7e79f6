package session

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/tabtint/internal/browser"
	favicon "github.com/jmylchreest/tabtint/internal/image"
	"github.com/jmylchreest/tabtint/internal/style"
	"github.com/jmylchreest/tabtint/internal/theme"
)

// faviconWorkers bounds concurrent favicon loads.
const faviconWorkers = 8

// View is one entry of the session's tab strip.
type View struct {
	dataID  string
	active  bool
	favicon image.Image
	style   *style.Recorder
}

// Active reports whether the view is the focused tab.
func (v *View) Active() bool { return v.active }

// Favicon returns the view's decoded favicon, or nil when it has none.
func (v *View) Favicon() image.Image { return v.favicon }

// DataID returns the view's "tab-<n>" or "group-<id>" identifier.
func (v *View) DataID() string { return v.dataID }

// Style returns the sink style writes for the view land in.
func (v *View) Style() style.Sink { return v.style }

// Recorder returns the view's recorded style.
func (v *View) Recorder() *style.Recorder { return v.style }

// Session is a browser host loaded from a session file. It serves tab
// lookups, theme preferences and the tab strip, and records every style
// write made against it.
type Session struct {
	path   string
	loader *favicon.Loader
	logger hclog.Logger

	mu      sync.RWMutex
	themeID string
	system  []theme.Theme
	user    []theme.Theme
	tabs    map[int]browser.Tab
	groups  map[string][]int
	views   []*View
	styles  map[string]*style.Recorder
	root    *style.Recorder
}

var (
	_ browser.TabStore        = (*Session)(nil)
	_ browser.PreferenceStore = (*Session)(nil)
	_ browser.TabStrip        = (*Session)(nil)
)

// Load reads the session file at path. loader decodes favicons and may be
// nil, in which case only local and data URI favicons load.
func Load(ctx context.Context, path string, loader *favicon.Loader, logger hclog.Logger) (*Session, error) {
	if loader == nil {
		loader = favicon.NewLoader(nil)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	s := &Session{
		path:   path,
		loader: loader,
		logger: logger.Named("session"),
		styles: make(map[string]*style.Recorder),
		root:   style.NewRecorder(),
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the session file path.
func (s *Session) Path() string {
	return s.path
}

// Reload re-reads the session file. Views that survive the reload keep
// their recorded styles, as live tab elements would.
func (s *Session) Reload(ctx context.Context) error {
	f, err := ReadFile(s.path)
	if err != nil {
		return err
	}

	system, err := convertThemes(f.SystemThemes)
	if err != nil {
		return fmt.Errorf("system themes: %w", err)
	}
	user, err := convertThemes(f.UserThemes)
	if err != nil {
		return fmt.Errorf("user themes: %w", err)
	}

	// Tabs listed by a group carry that membership unless they declare their own.
	listed := make(map[int]string)
	for _, g := range f.Groups {
		for _, id := range g.Tabs {
			listed[id] = g.ID
		}
	}

	tabs := make(map[int]browser.Tab, len(f.Tabs))
	groups := make(map[string][]int)
	for _, spec := range f.Tabs {
		if spec.Group == "" && spec.ExtData == "" {
			spec.Group = listed[spec.ID]
		}
		tab, err := spec.Tab()
		if err != nil {
			return err
		}
		tabs[spec.ID] = tab
		if spec.Group != "" {
			groups[spec.Group] = append(groups[spec.Group], spec.ID)
		}
	}
	for _, g := range f.Groups {
		if len(g.Tabs) > 0 {
			groups[g.ID] = g.Tabs
		}
	}

	icons := s.loadFavicons(ctx, f)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.themeID = f.CurrentTheme
	s.system = system
	s.user = user
	s.tabs = tabs
	s.groups = groups

	views := make([]*View, 0, len(f.Tabs)+len(f.Groups))
	for _, spec := range f.Tabs {
		if spec.Hidden {
			continue
		}
		ref := browser.Ref{TabID: spec.ID}
		views = append(views, s.view(ref.String(), spec.Active, icons[ref.String()]))
	}
	for _, g := range f.Groups {
		ref := browser.Ref{GroupID: g.ID}
		views = append(views, s.view(ref.String(), g.Active, icons[ref.String()]))
	}
	s.views = views

	s.logger.Debug("session loaded", "path", s.path, "tabs", len(tabs), "views", len(views))
	return nil
}

// view returns a view reusing any recorder already held for dataID.
// Callers hold s.mu.
func (s *Session) view(dataID string, active bool, icon image.Image) *View {
	rec, ok := s.styles[dataID]
	if !ok {
		rec = style.NewRecorder()
		s.styles[dataID] = rec
	}
	return &View{dataID: dataID, active: active, favicon: icon, style: rec}
}

// loadFavicons decodes every view's favicon. Failures leave the view
// without a favicon.
func (s *Session) loadFavicons(ctx context.Context, f *File) map[string]image.Image {
	sources := make(map[string]string)
	bySpec := make(map[int]string, len(f.Tabs))
	for _, spec := range f.Tabs {
		bySpec[spec.ID] = spec.Favicon
		if !spec.Hidden && spec.Favicon != "" {
			sources[browser.Ref{TabID: spec.ID}.String()] = spec.Favicon
		}
	}
	for _, g := range f.Groups {
		src := g.Favicon
		if src == "" {
			src = bySpec[groupFaviconTab(f, g)]
		}
		if src != "" {
			sources[browser.Ref{GroupID: g.ID}.String()] = src
		}
	}

	var (
		mu    sync.Mutex
		icons = make(map[string]image.Image, len(sources))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(faviconWorkers)
	for dataID, src := range sources {
		g.Go(func() error {
			img, err := s.loader.Load(gctx, s.resolvePath(src))
			if err != nil {
				s.logger.Warn("favicon unavailable", "view", dataID, "source", src, "error", err)
				return nil
			}
			mu.Lock()
			icons[dataID] = favicon.Thumbnail(img, favicon.DefaultThumbnailSize)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return icons
}

// groupFaviconTab picks the member whose favicon a group view shows: the
// group-active member, else the first.
func groupFaviconTab(f *File, g GroupSpec) int {
	members := g.Tabs
	if len(members) == 0 {
		for _, spec := range f.Tabs {
			if spec.Group == g.ID {
				members = append(members, spec.ID)
			}
		}
	}
	if len(members) == 0 {
		return 0
	}
	for _, spec := range f.Tabs {
		if spec.Group == g.ID && spec.GroupActive {
			return spec.ID
		}
	}
	return members[0]
}

// resolvePath makes local favicon paths relative to the session file.
func (s *Session) resolvePath(src string) string {
	if favicon.IsRemote(src) || strings.HasPrefix(src, "data:") || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(filepath.Dir(s.path), src)
}

// Tab implements browser.TabStore.
func (s *Session) Tab(_ context.Context, id int) (browser.Tab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tab, ok := s.tabs[id]
	if !ok {
		return browser.Tab{}, fmt.Errorf("tab %d: %w", id, browser.ErrTabNotFound)
	}
	return tab, nil
}

// GroupTabs implements browser.TabStore.
func (s *Session) GroupTabs(_ context.Context, groupID string) ([]browser.Tab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, browser.ErrTabNotFound)
	}

	tabs := make([]browser.Tab, 0, len(ids))
	for _, id := range ids {
		if tab, ok := s.tabs[id]; ok {
			tabs = append(tabs, tab)
		}
	}
	return tabs, nil
}

// CurrentThemeID implements browser.PreferenceStore.
func (s *Session) CurrentThemeID(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.themeID, nil
}

// SystemThemes implements browser.PreferenceStore.
func (s *Session) SystemThemes(context.Context) ([]theme.Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.system, nil
}

// UserThemes implements browser.PreferenceStore.
func (s *Session) UserThemes(context.Context) ([]theme.Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, nil
}

// Tabs implements browser.TabStrip.
func (s *Session) Tabs() []browser.TabView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]browser.TabView, len(s.views))
	for i, v := range s.views {
		views[i] = v
	}
	return views
}

// Root implements browser.TabStrip.
func (s *Session) Root() style.Sink {
	return s.root
}

// View returns the view with the given data id.
func (s *Session) View(dataID string) (*View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.views {
		if v.dataID == dataID {
			return v, true
		}
	}
	return nil, false
}

// CSS renders the recorded styles: the root properties first, then one rule
// per styled view in strip order.
func (s *Session) CSS() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rules []string
	if rule := s.root.Rule(":root"); rule != "" {
		rules = append(rules, rule)
	}
	for _, v := range s.views {
		if rule := v.style.Rule("#" + v.dataID); rule != "" {
			rules = append(rules, rule)
		}
	}
	return strings.Join(rules, "\n")
}
