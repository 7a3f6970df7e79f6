package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/tabtint/internal/browser"
	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/config"
	"github.com/jmylchreest/tabtint/internal/engine"
	"github.com/jmylchreest/tabtint/internal/session"
	"github.com/jmylchreest/tabtint/internal/theme"
)

type renderOptions struct {
	output string
	source string
}

// addEngineFlags registers the flags shared by render and watch.
func addEngineFlags(fs *pflag.FlagSet, opts *renderOptions) {
	defaults := config.Default()
	fs.StringVarP(&opts.output, "output", "o", "", "output stylesheet (default: stdout)")
	fs.StringVar(&opts.source, "source", string(theme.SourceFavicon), "accent source for web pages (favicon, browser)")
	fs.String(config.FlagColorScheme, string(defaults.ColorScheme), "fallback theme when the session's theme is unknown (auto, dark, light)")
	fs.IntP(config.FlagColours, "c", defaults.Colours, fmt.Sprintf("palette size per favicon (1-%d)", colour.MaxColours))
	fs.StringP(config.FlagAlgorithm, "a", string(defaults.Algorithm), "extraction algorithm (frequency, kmeans)")
	fs.String(config.FlagTransparency, string(defaults.Transparency), "transparency filter (alpha, red-sentinel)")
	fs.Duration(config.FlagDelay, defaults.Delay, "delay before the repeat pass")
	fs.Int(config.FlagConcurrency, defaults.Concurrency, "tabs resolved in parallel")
	fs.StringSlice(config.FlagInternal, nil, "extra internal page URL prefixes")
	fs.String(config.FlagCacheDir, defaults.CacheDir, "favicon cache directory")
	fs.Bool(config.FlagRefresh, false, "download remote favicons again even when cached")
	fs.String(config.FlagLogLevel, defaults.LogLevel, "log level (trace, debug, info, warn, error)")
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <session.yaml>",
		Short: "Render the tab stylesheet for a session",
		Long: `Load a session file, colour every tab from its favicon and write the
resulting stylesheet.

The pass runs as it would in the browser: once immediately and once more
after --delay, so the output reflects the repeat pass.

Examples:
  # Print the stylesheet
  tabtint render session.yaml

  # Write it to a file, using page theme colours as accents
  tabtint render --source browser -o tabs.css session.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, opts, args[0])
		},
	}
	addEngineFlags(cmd.Flags(), opts)

	return cmd
}

// pipeline is a loaded session with its engine and scheduler.
type pipeline struct {
	host      *session.Session
	engine    *engine.Engine
	scheduler *engine.Scheduler
	logger    hclog.Logger

	mu      sync.Mutex
	lastErr error
	passes  int
}

// newPipeline loads the session at path and wires an engine and scheduler
// to it. afterPass, when set, runs after every successful pass.
func newPipeline(ctx context.Context, cfg config.Config, opts *renderOptions, path string, logger hclog.Logger, afterPass func(string) error) (*pipeline, error) {
	source, err := theme.ParseAccentSource(opts.source)
	if err != nil {
		return nil, err
	}

	host, err := session.Load(ctx, path, newLoader(cfg, logger), logger)
	if err != nil {
		return nil, err
	}

	extractor, err := colour.NewExtractor(cfg.ExtractorConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	eng, err := engine.New(host, host, host, engine.Options{
		Extractor:        extractor,
		Colours:          cfg.Colours,
		Source:           source,
		InternalPrefixes: cfg.InternalPrefixes,
		Fallback:         cfg.FallbackTheme(),
		Concurrency:      cfg.Concurrency,
		Logger:           logger,
	})
	if err != nil {
		return nil, err
	}

	p := &pipeline{host: host, engine: eng, logger: logger}
	p.scheduler = engine.NewScheduler(ctx, func(ctx context.Context) error {
		report, err := eng.Recompute(ctx)
		if err == nil && afterPass != nil {
			err = afterPass(host.CSS())
		}
		p.record(err)
		if err != nil {
			return err
		}
		logger.Info("pass complete", "theme", report.ThemeID, "reset", report.Reset,
			"applied", report.Applied, "skipped", report.Skipped, "failed", len(report.Failed))
		return nil
	}, engine.SchedulerOptions{
		Delay:           cfg.Delay,
		WatchedPrefixes: cfg.WatchedPrefixes,
		Logger:          logger,
	})

	return p, nil
}

func (p *pipeline) record(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.passes++
	p.lastErr = err
}

// result returns the number of passes run and the error of the last one.
func (p *pipeline) result() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.passes, p.lastErr
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions, path string) error {
	cfg, logger, err := root.setup(cmd)
	if err != nil {
		return err
	}

	p, err := newPipeline(commandContext(cmd), cfg, opts, path, logger, nil)
	if err != nil {
		return err
	}

	p.scheduler.Trigger(browser.Event{Kind: browser.StripMutated})
	p.scheduler.Wait()

	if _, err := p.result(); err != nil {
		return fmt.Errorf("recompute failed: %w", err)
	}
	return writeOutput(cmd, opts.output, p.host.CSS())
}
