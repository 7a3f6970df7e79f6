// Package engine runs recompute passes over a tab strip and schedules them
// in response to host events.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/tabtint/internal/browser"
	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/style"
	"github.com/jmylchreest/tabtint/internal/theme"
)

// DefaultConcurrency bounds how many tabs are resolved at once.
const DefaultConcurrency = 4

// Options configures an Engine.
type Options struct {
	// Extractor builds favicon palettes. Defaults to the frequency extractor.
	Extractor colour.Extractor

	// Colours is the palette size requested from the extractor.
	Colours int

	// Source selects where web page accents come from.
	Source theme.AccentSource

	// InternalPrefixes extends the built-in internal URL prefixes.
	InternalPrefixes []string

	// Fallback is used when the current theme id matches no known theme.
	Fallback theme.Theme

	// Concurrency bounds parallel tab resolution.
	Concurrency int

	Logger hclog.Logger
}

// TabError records a tab that could not be styled.
type TabError struct {
	DataID string
	Err    error
}

func (e TabError) Error() string {
	return fmt.Sprintf("%s: %v", e.DataID, e.Err)
}

func (e TabError) Unwrap() error {
	return e.Err
}

// Report summarises one recompute pass.
type Report struct {
	ThemeID string

	// Reset is true when colouring was disabled and overrides were cleared.
	Reset bool

	Applied int
	Skipped int
	Failed  []TabError
}

// Engine computes and applies tab colours.
type Engine struct {
	tabs   browser.TabStore
	prefs  browser.PreferenceStore
	strip  browser.TabStrip
	opts   Options
	logger hclog.Logger

	// mu serialises passes. Style writes are overwrite-safe, but a pass must
	// not interleave its applies with another's.
	mu sync.Mutex
}

// New creates an Engine. Zero-valued options take their defaults.
func New(tabs browser.TabStore, prefs browser.PreferenceStore, strip browser.TabStrip, opts Options) (*Engine, error) {
	if tabs == nil || prefs == nil || strip == nil {
		return nil, fmt.Errorf("tab store, preference store and tab strip are required")
	}

	if opts.Extractor == nil {
		opts.Extractor = colour.NewFrequencyExtractor(colour.TransparencyAlpha)
	}
	if opts.Colours <= 0 {
		opts.Colours = colour.MaxColours
	}
	if opts.Source == "" {
		opts.Source = theme.SourceFavicon
	}
	if opts.Fallback.ID == "" {
		opts.Fallback = theme.DefaultDark()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	return &Engine{
		tabs:   tabs,
		prefs:  prefs,
		strip:  strip,
		opts:   opts,
		logger: opts.Logger.Named("engine"),
	}, nil
}

// CurrentTheme reads a fresh theme snapshot from the preference store.
func (e *Engine) CurrentTheme(ctx context.Context) (theme.Theme, error) {
	id, err := e.prefs.CurrentThemeID(ctx)
	if err != nil {
		return theme.Theme{}, fmt.Errorf("failed to read current theme: %w", err)
	}
	system, err := e.prefs.SystemThemes(ctx)
	if err != nil {
		return theme.Theme{}, fmt.Errorf("failed to read system themes: %w", err)
	}
	user, err := e.prefs.UserThemes(ctx)
	if err != nil {
		return theme.Theme{}, fmt.Errorf("failed to read user themes: %w", err)
	}

	th := theme.Select(id, system, user, e.opts.Fallback)
	if err := th.Validate(); err != nil {
		return theme.Theme{}, err
	}
	return th, nil
}

type outcome struct {
	plan style.Plan
	err  error
}

// Recompute runs one full pass over the tab strip. Only failures to read the
// theme or context cancellation abort the pass; per-tab failures are reported.
func (e *Engine) Recompute(ctx context.Context) (Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	th, err := e.CurrentTheme(ctx)
	if err != nil {
		return Report{}, err
	}

	views := e.strip.Tabs()
	root := e.strip.Root()
	report := Report{ThemeID: th.ID}

	if !th.ColouringEnabled() {
		sinks := make([]style.Sink, len(views))
		for i, v := range views {
			sinks[i] = v.Style()
		}
		style.Reset(sinks, root)

		e.logger.Debug("tab colouring disabled, cleared overrides",
			"theme", th.ID,
			"tabs", len(views),
		)
		report.Reset = true
		return report, nil
	}

	outcomes := make([]outcome, len(views))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, view := range views {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plan, err := e.planTab(gctx, th, view)
			outcomes[i] = outcome{plan: plan, err: err}
			// Tab failures stay with the tab.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	for i, view := range views {
		o := outcomes[i]
		switch {
		case o.err == nil:
			style.Apply(o.plan, view.Style(), root)
			report.Applied++
		case errors.Is(o.err, browser.ErrTabNotFound):
			e.logger.Debug("tab went away, skipping", "data_id", view.DataID())
			report.Skipped++
		default:
			e.logger.Warn("failed to style tab", "data_id", view.DataID(), "error", o.err)
			report.Failed = append(report.Failed, TabError{DataID: view.DataID(), Err: o.err})
		}
	}

	e.logger.Debug("recompute complete",
		"theme", th.ID,
		"applied", report.Applied,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
	)

	return report, nil
}

// planTab resolves a single view into its style writes.
func (e *Engine) planTab(ctx context.Context, th theme.Theme, view browser.TabView) (style.Plan, error) {
	ref, err := browser.ParseDataID(view.DataID())
	if err != nil {
		return style.Plan{}, err
	}

	tab, err := browser.ResolveTab(ctx, e.tabs, ref)
	if err != nil {
		return style.Plan{}, err
	}

	req := theme.Request{
		Theme:  th,
		Kind:   theme.KindOf(tab.URL, e.opts.InternalPrefixes),
		Source: e.opts.Source,
	}

	if req.Kind == theme.PageWeb {
		switch e.opts.Source {
		case theme.SourceBrowser:
			if tab.ThemeColor != "" {
				c, err := colour.ParseHex(tab.ThemeColor)
				if err != nil {
					e.logger.Debug("ignoring page theme colour", "tab", tab.ID, "error", err)
				} else {
					req.PageColor = &c
				}
			}
		default:
			if icon := view.Favicon(); icon != nil {
				palette, err := e.opts.Extractor.Extract(icon, e.opts.Colours)
				if err != nil {
					return style.Plan{}, fmt.Errorf("failed to extract favicon palette: %w", err)
				}
				req.Palette = palette.Colors()
			}
		}
	}

	res := theme.Resolve(req)
	e.logger.Trace("resolved tab",
		"tab", tab.ID,
		"kind", req.Kind.String(),
		"accent", res.Accent.Background.Hex(),
		"bright", res.Accent.Bright,
	)

	return style.PlanFor(view.Active(), th, res), nil
}
