package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tabtint/internal/browser"
)

const (
	// DefaultDelay is how long after a trigger the repeat pass runs, giving
	// late favicons time to load.
	DefaultDelay = 100 * time.Millisecond

	// DefaultWatchedPrefix is the preference path whose changes trigger a pass.
	DefaultWatchedPrefix = "vivaldi.themes"
)

// RecomputeFunc runs one pass.
type RecomputeFunc func(ctx context.Context) error

// SchedulerOptions configures a Scheduler.
type SchedulerOptions struct {
	Delay           time.Duration
	WatchedPrefixes []string
	Logger          hclog.Logger
}

// Scheduler turns host events into recompute passes. Every trigger runs one
// pass immediately and arms one delayed repeat. Triggers are neither
// coalesced nor cancelled; passes are idempotent.
type Scheduler struct {
	ctx       context.Context
	recompute RecomputeFunc
	delay     time.Duration
	prefixes  []string
	logger    hclog.Logger

	pending sync.WaitGroup
}

// NewScheduler creates a Scheduler that passes ctx to every recompute.
func NewScheduler(ctx context.Context, fn RecomputeFunc, opts SchedulerOptions) *Scheduler {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if len(opts.WatchedPrefixes) == 0 {
		opts.WatchedPrefixes = []string{DefaultWatchedPrefix}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	return &Scheduler{
		ctx:       ctx,
		recompute: fn,
		delay:     opts.Delay,
		prefixes:  opts.WatchedPrefixes,
		logger:    opts.Logger.Named("scheduler"),
	}
}

// ForEngine adapts an Engine's Recompute to a RecomputeFunc.
func ForEngine(e *Engine) RecomputeFunc {
	return func(ctx context.Context) error {
		_, err := e.Recompute(ctx)
		return err
	}
}

// Trigger runs a pass now and schedules the delayed repeat.
func (s *Scheduler) Trigger(ev browser.Event) {
	s.logger.Debug("recompute triggered", "event", ev.Kind.String())

	s.run(ev, "immediate")

	s.pending.Add(1)
	time.AfterFunc(s.delay, func() {
		defer s.pending.Done()
		s.run(ev, "delayed")
	})
}

// Handle dispatches a host event. Preference changes outside the watched
// prefixes are ignored.
func (s *Scheduler) Handle(ev browser.Event) {
	if ev.Kind == browser.PreferenceChanged && !s.Watches(ev.Path) {
		s.logger.Trace("ignoring preference change", "path", ev.Path)
		return
	}
	s.Trigger(ev)
}

// HandlePreference triggers a pass when path is watched.
func (s *Scheduler) HandlePreference(path string) {
	s.Handle(browser.Event{Kind: browser.PreferenceChanged, Path: path})
}

// Watches reports whether path equals a watched prefix or lies beneath one.
func (s *Scheduler) Watches(path string) bool {
	for _, p := range s.prefixes {
		if path == p || strings.HasPrefix(path, p+".") {
			return true
		}
	}
	return false
}

// Attach subscribes the scheduler to src and returns the unsubscribe function.
func (s *Scheduler) Attach(src browser.EventSource) func() {
	return src.Subscribe(s.Handle)
}

// Wait blocks until every armed delayed pass has run.
func (s *Scheduler) Wait() {
	s.pending.Wait()
}

func (s *Scheduler) run(ev browser.Event, pass string) {
	if err := s.recompute(s.ctx); err != nil {
		s.logger.Warn("recompute failed",
			"event", ev.Kind.String(),
			"pass", pass,
			"error", err,
		)
	}
}
