package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/config"
	"github.com/jmylchreest/tabtint/internal/image"
	"github.com/jmylchreest/tabtint/internal/style"
	"github.com/jmylchreest/tabtint/internal/theme"
)

type resolveOptions struct {
	accent          string
	saturationLimit float64
	source          string
	themeColor      string
	url             string
	format          string
	output          string
	preview         bool
}

func newResolveCmd(root *rootOptions) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve [icon]",
		Short: "Resolve the tab colours for a favicon",
		Long: `Resolve the accent, text colour and shades a tab showing the given
favicon would receive.

Without an icon, or when the icon yields no colours, the theme accent is used.
Internal browser pages (see --url) always take the theme's own colours.

Examples:
  # Accent for a favicon against the default theme
  tabtint resolve favicon.ico

  # Halve the saturation of extracted accents
  tabtint resolve --saturation-limit 0.5 favicon.png

  # Use the page's declared theme colour instead of the favicon
  tabtint resolve --source browser --theme-color '#336699'

  # Print the CSS a tab would receive
  tabtint resolve -f css favicon.ico`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := ""
			if len(args) == 1 {
				src = args[0]
			}
			return runResolve(cmd, root, opts, src)
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVar(&opts.accent, "accent", "", "theme accent colour (default: the fallback theme's accent)")
	cmd.Flags().Float64Var(&opts.saturationLimit, "saturation-limit", 1, "scale extracted accent saturation (0-1)")
	cmd.Flags().StringVar(&opts.source, "source", string(theme.SourceFavicon), "accent source (favicon, browser)")
	cmd.Flags().StringVar(&opts.themeColor, "theme-color", "", "page theme colour used with --source browser")
	cmd.Flags().StringVar(&opts.url, "url", "https://example.com/", "page URL, used to detect internal pages")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json, css)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour previews in terminal")
	cmd.Flags().String(config.FlagColorScheme, string(defaults.ColorScheme), "fallback theme (auto, dark, light)")
	cmd.Flags().IntP(config.FlagColours, "c", defaults.Colours, "palette size considered")
	cmd.Flags().String(config.FlagTransparency, string(defaults.Transparency), "transparency filter (alpha, red-sentinel)")
	cmd.Flags().StringSlice(config.FlagInternal, nil, "extra internal page URL prefixes")

	return cmd
}

func runResolve(cmd *cobra.Command, root *rootOptions, opts *resolveOptions, src string) error {
	cfg, logger, err := root.setup(cmd)
	if err != nil {
		return err
	}
	logger = logger.Named("resolve")

	source, err := theme.ParseAccentSource(opts.source)
	if err != nil {
		return err
	}

	th := cfg.FallbackTheme()
	if opts.accent != "" {
		if th.Accent, err = colour.ParseHex(opts.accent); err != nil {
			return fmt.Errorf("invalid --accent: %w", err)
		}
	}
	th.SaturationLimit = opts.saturationLimit
	if err := th.Validate(); err != nil {
		return err
	}

	req := theme.Request{
		Theme:  th,
		Kind:   theme.KindOf(opts.url, cfg.InternalPrefixes),
		Source: source,
	}

	if opts.themeColor != "" {
		pc, err := colour.ParseHex(opts.themeColor)
		if err != nil {
			return fmt.Errorf("invalid --theme-color: %w", err)
		}
		req.PageColor = &pc
	}

	if src != "" && source == theme.SourceFavicon {
		img, err := newLoader(cfg, logger).Load(commandContext(cmd), src)
		if err != nil {
			logger.Warn("favicon unavailable, using theme accent", "source", src, "error", err)
		} else {
			extractor, err := colour.NewExtractor(cfg.ExtractorConfig())
			if err != nil {
				return fmt.Errorf("failed to create extractor: %w", err)
			}
			palette, err := extractor.Extract(image.Thumbnail(img, image.DefaultThumbnailSize), cfg.Colours)
			if err != nil {
				return fmt.Errorf("failed to extract colours: %w", err)
			}
			if dominant, ok := palette.Dominant(); ok {
				logger.Debug("favicon palette", "dominant", dominant.Hex(), "colours", palette.Len())
			}
			req.Palette = palette.Colors()
		}
	}

	res := theme.Resolve(req)
	logger.Debug("resolved", "kind", req.Kind, "accent", res.Accent.Background.Hex(), "bright", res.Accent.Bright)

	preview := opts.preview && opts.output == "" && isTerminal(cmd.OutOrStdout())

	var output string
	switch opts.format {
	case "text":
		output = formatResultText(res, preview)
	case "json":
		data, err := json.MarshalIndent(newResultJSON(res), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to convert to JSON: %w", err)
		}
		output = string(data) + "\n"
	case "css":
		output = formatResultCSS(th, res)
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, css)", opts.format)
	}

	return writeOutput(cmd, opts.output, output)
}

type resultJSON struct {
	Accent     string `json:"accent"`
	Foreground string `json:"foreground"`
	Bright     bool   `json:"bright"`
	Dark       string `json:"dark"`
	Darker     string `json:"darker"`
	Alpha      string `json:"alpha"`
	AlphaHeavy string `json:"alpha_heavy"`
	TabBg      string `json:"tab_background"`
	TabFg      string `json:"tab_foreground"`
	Internal   bool   `json:"internal"`
}

func newResultJSON(res theme.Result) resultJSON {
	return resultJSON{
		Accent:     res.Accent.Background.CSS(),
		Foreground: res.Accent.Foreground.CSS(),
		Bright:     res.Accent.Bright,
		Dark:       res.Shades.Dark.CSS(),
		Darker:     res.Shades.Darker.CSS(),
		Alpha:      res.Shades.Alpha.CSS(),
		AlphaHeavy: res.Shades.AlphaHeavy.CSS(),
		TabBg:      res.Tab.Background.CSS(),
		TabFg:      res.Tab.Foreground.CSS(),
		Internal:   res.Internal,
	}
}

func formatResultText(res theme.Result, preview bool) string {
	brightness := "dark"
	if res.Accent.Bright {
		brightness = "bright"
	}

	rows := []struct {
		role string
		c    colour.Color
	}{
		{"accent", res.Accent.Background},
		{"foreground", res.Accent.Foreground},
		{"dark", res.Shades.Dark},
		{"darker", res.Shades.Darker},
		{"alpha", res.Shades.Alpha},
		{"alpha-heavy", res.Shades.AlphaHeavy},
		{"tab-background", res.Tab.Background},
		{"tab-foreground", res.Tab.Foreground},
	}

	headers := []string{"ROLE", "VALUE"}
	if preview {
		headers = append(headers, "PREVIEW")
	}
	table := NewTable(headers...)
	for _, r := range rows {
		cells := []string{r.role, r.c.CSS()}
		if preview {
			cells = append(cells, colour.Swatch(r.c.WithAlpha(1), "", previewWidth))
		}
		table.AddRow(cells...)
	}

	var b strings.Builder
	b.WriteString(table.Render())
	fmt.Fprintf(&b, "\nbrightness: %s\n", brightness)
	if res.Internal {
		b.WriteString("internal page: theme colours\n")
	}
	return b.String()
}

// formatResultCSS renders the writes an active tab would receive.
func formatResultCSS(th theme.Theme, res theme.Result) string {
	plan := style.PlanFor(true, th, res)
	tab, root := style.NewRecorder(), style.NewRecorder()
	style.Apply(plan, tab, root)
	return root.Rule(":root") + "\n" + tab.Rule(".tab")
}
