package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/config"
	"github.com/jmylchreest/tabtint/internal/image"
)

// previewWidth is the swatch width used in terminal previews.
const previewWidth = 8

type extractOptions struct {
	format  string
	output  string
	preview bool
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <icon>",
		Short: "Extract the colour palette of a favicon",
		Long: `Extract the most frequent colours of a favicon.

Fully transparent and near-white pixels are ignored. Colours are listed most
frequent first, at most 10 of them. With --algorithm kmeans similar shades
are grouped before ranking.

The icon may be a local file, an http(s) URL or a data: URI.
Supported formats: ICO, PNG, GIF, JPEG, BMP, WebP

Examples:
  # Extract the palette of a favicon
  tabtint extract favicon.ico

  # Top 3 colours as JSON
  tabtint extract -c 3 -f json https://example.com/favicon.ico

  # Show colour swatches in the terminal
  tabtint extract --preview favicon.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, opts, args[0])
		},
	}

	defaults := config.Default()
	cmd.Flags().IntP(config.FlagColours, "c", defaults.Colours, fmt.Sprintf("number of colours to extract (1-%d)", colour.MaxColours))
	cmd.Flags().StringP(config.FlagAlgorithm, "a", string(defaults.Algorithm), "extraction algorithm (frequency, kmeans)")
	cmd.Flags().String(config.FlagTransparency, string(defaults.Transparency), "transparency filter (alpha, red-sentinel)")
	cmd.Flags().Bool(config.FlagRefresh, false, "download the favicon again even when cached")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "hex", "output format (hex, rgb, json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour previews in terminal")

	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, opts *extractOptions, src string) error {
	cfg, logger, err := root.setup(cmd)
	if err != nil {
		return err
	}
	logger = logger.Named("extract")

	if err := image.ValidateImagePath(src); err != nil {
		return fmt.Errorf("invalid icon: %w", err)
	}

	extractor, err := colour.NewExtractor(cfg.ExtractorConfig())
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	logger.Debug("loading favicon", "source", src)
	img, err := newLoader(cfg, logger).Load(commandContext(cmd), src)
	if err != nil {
		return fmt.Errorf("failed to load icon: %w", err)
	}
	img = image.Thumbnail(img, image.DefaultThumbnailSize)

	palette, err := extractor.Extract(img, cfg.Colours)
	if err != nil {
		return fmt.Errorf("failed to extract colours: %w", err)
	}
	logger.Debug("extracted palette", "colours", palette.Len())

	preview := opts.preview
	if preview && (opts.output != "" || !isTerminal(cmd.OutOrStdout())) {
		logger.Debug("preview disabled, output is not a terminal")
		preview = false
	}

	output, err := formatPalette(palette, opts.format, preview)
	if err != nil {
		return err
	}
	return writeOutput(cmd, opts.output, output)
}

// formatPalette formats the palette according to the specified format.
func formatPalette(palette *colour.Palette, format string, showPreview bool) (string, error) {
	var b strings.Builder

	switch format {
	case "hex":
		for _, c := range palette.Colors() {
			if showPreview {
				b.WriteString(colour.Swatch(c, "", previewWidth))
				b.WriteString("  ")
			}
			b.WriteString(c.Hex())
			b.WriteString("\n")
		}
	case "rgb":
		for _, c := range palette.Colors() {
			if showPreview {
				b.WriteString(colour.Swatch(c, "", previewWidth))
				b.WriteString("  ")
			}
			b.WriteString(c.String())
			b.WriteString("\n")
		}
	case "json":
		data, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		b.Write(data)
		b.WriteString("\n")
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: hex, rgb, json)", format)
	}

	return b.String(), nil
}
