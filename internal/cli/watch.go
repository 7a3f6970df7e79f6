package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tabtint/internal/browser"
)

// DefaultPollInterval is how often watch checks the session file.
const DefaultPollInterval = 500 * time.Millisecond

type watchOptions struct {
	renderOptions
	interval time.Duration
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <session.yaml>",
		Short: "Re-render the tab stylesheet whenever a session changes",
		Long: `Render a session, then keep watching the session file. Every change
triggers a new pass and rewrites the stylesheet. Stop with Ctrl+C.

Examples:
  # Keep tabs.css up to date while session.yaml is edited
  tabtint watch -o tabs.css session.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, root, opts, args[0])
		},
	}
	addEngineFlags(cmd.Flags(), &opts.renderOptions)
	cmd.Flags().DurationVar(&opts.interval, "interval", DefaultPollInterval, "session file poll interval")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, root *rootOptions, opts *watchOptions, path string) error {
	cfg, logger, err := root.setup(cmd)
	if err != nil {
		return err
	}
	logger = logger.Named("watch")

	if opts.interval <= 0 {
		opts.interval = DefaultPollInterval
	}

	// Passes may finish on timer goroutines; keep their writes whole.
	var writeMu sync.Mutex
	write := func(css string) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return writeOutput(cmd, opts.output, css)
	}

	p, err := newPipeline(ctx, cfg, &opts.renderOptions, path, logger, write)
	if err != nil {
		return err
	}

	modTime, err := fileModTime(path)
	if err != nil {
		return err
	}

	p.scheduler.Trigger(browser.Event{Kind: browser.StripMutated})

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.scheduler.Wait()
			logger.Debug("stopped")
			return nil
		case <-ticker.C:
			current, err := fileModTime(path)
			if err != nil {
				logger.Warn("cannot stat session", "error", err)
				continue
			}
			if current.Equal(modTime) {
				continue
			}
			modTime = current

			if err := p.host.Reload(ctx); err != nil {
				logger.Warn("session reload failed, keeping previous state", "error", err)
				continue
			}
			logger.Debug("session changed", "path", path)
			p.scheduler.Trigger(browser.Event{Kind: browser.StripMutated})
		}
	}
}

func fileModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat session file: %w", err)
	}
	return info.ModTime(), nil
}
