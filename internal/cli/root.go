// Package cli provides the command-line interface for tabtint.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/tabtint/internal/config"
	"github.com/jmylchreest/tabtint/internal/image"
	"github.com/jmylchreest/tabtint/internal/util/imagecache"
	"github.com/jmylchreest/tabtint/internal/version"
)

// rootOptions holds the global flags.
type rootOptions struct {
	verbose    bool
	quiet      bool
	configPath string
}

// NewRootCmd builds the tabtint command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tabtint",
		Short: "Colour browser tabs from their favicons",
		Long: `tabtint derives an accent colour for every browser tab from its favicon
and writes the resulting tab and accent styles.

It extracts the dominant colours of a favicon, resolves them against the
browser theme into an accent with matching text colour and shades, and
applies those to a session of tabs as CSS.`,
		Version:      version.Version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/tabtint/config.yaml)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newExtractCmd(opts))
	rootCmd.AddCommand(newResolveCmd(opts))
	rootCmd.AddCommand(newRenderCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// setup loads the configuration, merging any config flags set on cmd, and
// builds the root logger.
func (o *rootOptions) setup(cmd *cobra.Command) (config.Config, hclog.Logger, error) {
	cfg, err := config.NewBuilder().
		WithFile(o.configPath).
		WithEnvConfig().
		WithFlags(cmd.Flags()).
		Build()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, o.logger(cfg, cmd.ErrOrStderr()), nil
}

// logger builds the root logger. --verbose and --quiet override the
// configured level.
func (o *rootOptions) logger(cfg config.Config, out io.Writer) hclog.Logger {
	level := cfg.Level()
	switch {
	case o.verbose:
		level = hclog.Debug
	case o.quiet:
		level = hclog.Error
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "tabtint",
		Output: out,
		Level:  level,
	})
}

// newLoader returns a favicon loader that fetches URLs through the disk cache.
func newLoader(cfg config.Config, logger hclog.Logger) *image.Loader {
	return image.NewLoader(imagecache.New(imagecache.CacheOptions{
		CacheDir:          cfg.CacheDir,
		Refresh:           cfg.RefreshFavicons,
		BlockPrivateHosts: cfg.BlockPrivateHosts,
		Logger:            logger,
	}))
}

// commandContext returns the command's context, or a background context
// when it was run without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 - File descriptors fit in int
}

// writeOutput writes content to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { // #nosec G306 - Output files need standard read permissions
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
