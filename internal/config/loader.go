package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/tabtint/internal/colour"
)

// EnvPrefix prefixes every environment variable tabtint reads.
const EnvPrefix = "TABTINT_"

// Builder assembles a Config from defaults, a file, the environment and
// flags, applied in that order.
type Builder struct {
	path     string
	explicit bool
	useEnv   bool
	lookup   func(string) (string, bool)
	flags    *pflag.FlagSet
}

// NewBuilder creates a Builder starting from Default().
func NewBuilder() *Builder {
	return &Builder{lookup: os.LookupEnv}
}

// WithFile reads the YAML file at path. An empty path means the default
// location, which may be absent. A named file must exist.
func (b *Builder) WithFile(path string) *Builder {
	b.path = path
	b.explicit = path != ""
	if path == "" {
		b.path = DefaultPath()
	}
	return b
}

// WithEnvConfig applies TABTINT_* environment variables.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithLookup replaces the environment lookup, mainly for tests.
func (b *Builder) WithLookup(lookup func(string) (string, bool)) *Builder {
	b.lookup = lookup
	return b
}

// WithFlags applies flags that were set on the command line.
func (b *Builder) WithFlags(fs *pflag.FlagSet) *Builder {
	b.flags = fs
	return b
}

// Build produces a validated Config.
func (b *Builder) Build() (Config, error) {
	cfg := Default()

	if b.path != "" {
		if err := cfg.mergeFile(b.path); err != nil {
			if !errors.Is(err, ErrConfigNotFound) || b.explicit {
				return Config{}, err
			}
		}
	}

	if b.useEnv {
		if err := cfg.mergeEnv(b.lookup); err != nil {
			return Config{}, err
		}
	}

	if b.flags != nil {
		if err := cfg.mergeFlags(b.flags); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - User-specified config path, intended to be read
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("COLOR_SCHEME"); ok {
		c.ColorScheme = ColorScheme(strings.ToLower(v))
	}
	if v, ok := get("ALGORITHM"); ok {
		c.Algorithm = colour.Algorithm(v)
	}
	if v, ok := get("TRANSPARENCY"); ok {
		c.Transparency = colour.TransparencyMode(v)
	}
	if v, ok := get("COLOURS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sCOLOURS: %w", EnvPrefix, err)
		}
		c.Colours = n
	}
	if v, ok := get("DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sDELAY: %w", EnvPrefix, err)
		}
		c.Delay = d
	}
	if v, ok := get("CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sCONCURRENCY: %w", EnvPrefix, err)
		}
		c.Concurrency = n
	}
	if v, ok := get("INTERNAL_PREFIXES"); ok {
		c.InternalPrefixes = splitList(v)
	}
	if v, ok := get("WATCHED_PREFIXES"); ok {
		c.WatchedPrefixes = splitList(v)
	}
	if v, ok := get("CACHE_DIR"); ok {
		c.CacheDir = v
	}
	if v, ok := get("REFRESH_FAVICONS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sREFRESH_FAVICONS: %w", EnvPrefix, err)
		}
		c.RefreshFavicons = b
	}
	if v, ok := get("BLOCK_PRIVATE_HOSTS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sBLOCK_PRIVATE_HOSTS: %w", EnvPrefix, err)
		}
		c.BlockPrivateHosts = b
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	return nil
}

// Flag names shared with the CLI.
const (
	FlagColorScheme  = "color-scheme"
	FlagAlgorithm    = "algorithm"
	FlagTransparency = "transparency"
	FlagColours      = "colours"
	FlagDelay        = "delay"
	FlagConcurrency  = "concurrency"
	FlagInternal     = "internal-prefix"
	FlagCacheDir     = "cache-dir"
	FlagRefresh      = "refresh-favicons"
	FlagLogLevel     = "log-level"
)

// mergeFlags copies the flags the user actually set. Flags that are not
// defined on fs are ignored.
func (c *Config) mergeFlags(fs *pflag.FlagSet) error {
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	if changed(FlagColorScheme) {
		var v string
		v, err = fs.GetString(FlagColorScheme)
		c.ColorScheme = ColorScheme(strings.ToLower(v))
	}
	if err == nil && changed(FlagAlgorithm) {
		var v string
		v, err = fs.GetString(FlagAlgorithm)
		c.Algorithm = colour.Algorithm(v)
	}
	if err == nil && changed(FlagTransparency) {
		var v string
		v, err = fs.GetString(FlagTransparency)
		c.Transparency = colour.TransparencyMode(v)
	}
	if err == nil && changed(FlagColours) {
		c.Colours, err = fs.GetInt(FlagColours)
	}
	if err == nil && changed(FlagDelay) {
		c.Delay, err = fs.GetDuration(FlagDelay)
	}
	if err == nil && changed(FlagConcurrency) {
		c.Concurrency, err = fs.GetInt(FlagConcurrency)
	}
	if err == nil && changed(FlagInternal) {
		c.InternalPrefixes, err = fs.GetStringSlice(FlagInternal)
	}
	if err == nil && changed(FlagCacheDir) {
		c.CacheDir, err = fs.GetString(FlagCacheDir)
	}
	if err == nil && changed(FlagRefresh) {
		c.RefreshFavicons, err = fs.GetBool(FlagRefresh)
	}
	if err == nil && changed(FlagLogLevel) {
		c.LogLevel, err = fs.GetString(FlagLogLevel)
	}
	if err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}
	return nil
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
