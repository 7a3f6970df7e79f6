// Package config holds tabtint's settings and loads them from a YAML file,
// TABTINT_* environment variables and command-line flags.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/hashicorp/go-hclog"
	dark "github.com/thiagokokada/dark-mode-go"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/engine"
	"github.com/jmylchreest/tabtint/internal/theme"
	"github.com/jmylchreest/tabtint/internal/util/imagecache"
)

const (
	// AppName is used for XDG directory paths.
	AppName = "tabtint"

	// DefaultConfigFile is the config file name inside the config directory.
	DefaultConfigFile = "config.yaml"
)

// ColorScheme selects the built-in fallback theme.
type ColorScheme string

const (
	SchemeAuto  ColorScheme = "auto"
	SchemeDark  ColorScheme = "dark"
	SchemeLight ColorScheme = "light"
)

// IsValid reports whether s is a known scheme.
func (s ColorScheme) IsValid() bool {
	switch s {
	case SchemeAuto, SchemeDark, SchemeLight:
		return true
	}
	return false
}

// detectDarkMode asks the desktop for its colour scheme.
var detectDarkMode = dark.IsDarkMode

// Config holds all tabtint settings.
type Config struct {
	// ColorScheme picks the fallback theme used when the session's theme id
	// is unknown. auto follows the desktop.
	ColorScheme ColorScheme `yaml:"color_scheme"`

	Algorithm    colour.Algorithm        `yaml:"algorithm"`
	Transparency colour.TransparencyMode `yaml:"transparency"`

	// Colours is the palette size extracted from each favicon.
	Colours int `yaml:"colours"`

	// Delay is how long after a trigger the repeat pass runs.
	Delay time.Duration `yaml:"delay"`

	// Concurrency bounds parallel tab resolution.
	Concurrency int `yaml:"concurrency"`

	// InternalPrefixes are extra URL prefixes treated as browser pages.
	InternalPrefixes []string `yaml:"internal_prefixes"`

	// WatchedPrefixes are the preference paths that trigger a pass.
	WatchedPrefixes []string `yaml:"watched_prefixes"`

	// CacheDir holds downloaded favicons.
	CacheDir string `yaml:"cache_dir"`

	// RefreshFavicons downloads remote favicons again even when cached.
	RefreshFavicons bool `yaml:"refresh_favicons"`

	// BlockPrivateHosts refuses favicon URLs on loopback or private networks.
	BlockPrivateHosts bool `yaml:"block_private_hosts"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ColorScheme:     SchemeAuto,
		Algorithm:       colour.AlgorithmFrequency,
		Transparency:    colour.TransparencyAlpha,
		Colours:         colour.MaxColours,
		Delay:           engine.DefaultDelay,
		Concurrency:     engine.DefaultConcurrency,
		WatchedPrefixes: []string{engine.DefaultWatchedPrefix},
		CacheDir:        imagecache.DefaultCacheDir(),
		LogLevel:        "warn",
	}
}

// ConfigDir returns the XDG config directory for tabtint.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), DefaultConfigFile)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.ColorScheme.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidColorScheme, c.ColorScheme)
	}
	extractor := colour.ExtractorConfig{
		Algorithm:    c.Algorithm,
		ColorCount:   c.Colours,
		Transparency: c.Transparency,
	}
	if err := extractor.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExtractor, err)
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}

// ExtractorConfig returns the extraction settings.
func (c Config) ExtractorConfig() colour.ExtractorConfig {
	return colour.ExtractorConfig{
		Algorithm:    c.Algorithm,
		ColorCount:   c.Colours,
		Transparency: c.Transparency,
	}
}

// Level returns the configured log level, defaulting to warn.
func (c Config) Level() hclog.Level {
	if level := hclog.LevelFromString(c.LogLevel); level != hclog.NoLevel {
		return level
	}
	return hclog.Warn
}

// ResolveScheme maps auto to the desktop's scheme. Detection failures
// resolve to dark.
func (c Config) ResolveScheme() ColorScheme {
	if c.ColorScheme != SchemeAuto && c.ColorScheme.IsValid() {
		return c.ColorScheme
	}

	isDark, err := detectDarkMode()
	if err != nil || isDark {
		return SchemeDark
	}
	return SchemeLight
}

// FallbackTheme returns the built-in theme for the resolved scheme.
func (c Config) FallbackTheme() theme.Theme {
	if c.ResolveScheme() == SchemeLight {
		return theme.DefaultLight()
	}
	return theme.DefaultDark()
}
