package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/tabtint/internal/colour"
	"github.com/jmylchreest/tabtint/internal/util/imagecache"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func noEnv(string) (string, bool) { return "", false }

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Colours != colour.MaxColours {
		t.Errorf("Colours = %d, want %d", cfg.Colours, colour.MaxColours)
	}
	if cfg.Delay != 100*time.Millisecond {
		t.Errorf("Delay = %v, want 100ms", cfg.Delay)
	}
	if cfg.Level() != hclog.Warn {
		t.Errorf("Level() = %v, want warn", cfg.Level())
	}
	if cfg.CacheDir != imagecache.DefaultCacheDir() {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, imagecache.DefaultCacheDir())
	}
	if cfg.RefreshFavicons {
		t.Error("RefreshFavicons = true, want false")
	}
}

func TestBuildFromFile(t *testing.T) {
	path := writeConfig(t, `color_scheme: light
colours: 5
delay: 250ms
transparency: red-sentinel
internal_prefixes:
  - "opera://"
watched_prefixes:
  - browser.theme
log_level: debug
`)

	cfg, err := NewBuilder().WithFile(path).WithLookup(noEnv).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if cfg.ColorScheme != SchemeLight {
		t.Errorf("ColorScheme = %q", cfg.ColorScheme)
	}
	if cfg.Colours != 5 {
		t.Errorf("Colours = %d, want 5", cfg.Colours)
	}
	if cfg.Delay != 250*time.Millisecond {
		t.Errorf("Delay = %v, want 250ms", cfg.Delay)
	}
	if cfg.Transparency != colour.TransparencyRedSentinel {
		t.Errorf("Transparency = %q", cfg.Transparency)
	}
	if len(cfg.InternalPrefixes) != 1 || cfg.InternalPrefixes[0] != "opera://" {
		t.Errorf("InternalPrefixes = %v", cfg.InternalPrefixes)
	}
	if len(cfg.WatchedPrefixes) != 1 || cfg.WatchedPrefixes[0] != "browser.theme" {
		t.Errorf("WatchedPrefixes = %v", cfg.WatchedPrefixes)
	}
	if cfg.Level() != hclog.Debug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
	if cfg.Algorithm != colour.AlgorithmFrequency {
		t.Errorf("Algorithm = %q, want default kept", cfg.Algorithm)
	}
}

func TestBuildMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := NewBuilder().WithFile(missing).Build()
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Build() with missing explicit file error = %v, want ErrConfigNotFound", err)
	}

	b := NewBuilder().WithLookup(noEnv)
	b.path = missing
	if _, err := b.Build(); err != nil {
		t.Errorf("Build() with missing default file error = %v", err)
	}
}

func TestBuildPrecedence(t *testing.T) {
	path := writeConfig(t, "colours: 5\nconcurrency: 2\nlog_level: info\n")
	env := envMap(map[string]string{
		"TABTINT_COLOURS":             "7",
		"TABTINT_LOG_LEVEL":           "error",
		"TABTINT_INTERNAL_PREFIXES":   "opera://, ,arc://",
		"TABTINT_DELAY":               "1s",
		"TABTINT_BLOCK_PRIVATE_HOSTS": "true",
		"TABTINT_REFRESH_FAVICONS":    "false",
	})

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int(FlagColours, 10, "")
	fs.String(FlagLogLevel, "", "")
	fs.Bool(FlagRefresh, false, "")
	if err := fs.Parse([]string{"--colours", "3", "--refresh-favicons"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := NewBuilder().WithFile(path).WithEnvConfig().WithLookup(env).WithFlags(fs).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if cfg.Colours != 3 {
		t.Errorf("Colours = %d, want flag value 3", cfg.Colours)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want env value (flag unset)", cfg.LogLevel)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want file value 2", cfg.Concurrency)
	}
	if cfg.Delay != time.Second {
		t.Errorf("Delay = %v, want 1s", cfg.Delay)
	}
	if len(cfg.InternalPrefixes) != 2 || cfg.InternalPrefixes[1] != "arc://" {
		t.Errorf("InternalPrefixes = %v", cfg.InternalPrefixes)
	}
	if !cfg.BlockPrivateHosts {
		t.Error("BlockPrivateHosts = false, want env value true")
	}
	if !cfg.RefreshFavicons {
		t.Error("RefreshFavicons = false, want flag value true")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantErr error
	}{
		{name: "bad scheme", body: "color_scheme: sepia\n", wantErr: ErrInvalidColorScheme},
		{name: "too many colours", body: "colours: 11\n", wantErr: ErrInvalidExtractor},
		{name: "bad transparency", body: "transparency: none\n", wantErr: ErrInvalidExtractor},
		{name: "negative delay", body: "delay: -1s\n", wantErr: ErrInvalidDelay},
		{name: "negative concurrency", body: "concurrency: -1\n", wantErr: ErrInvalidConcurrency},
		{name: "bad log level", body: "log_level: loud\n", wantErr: ErrInvalidLogLevel},
		{name: "bad env number", env: map[string]string{"TABTINT_COLOURS": "many"}},
		{name: "bad env duration", env: map[string]string{"TABTINT_DELAY": "soon"}},
		{name: "bad env bool", env: map[string]string{"TABTINT_BLOCK_PRIVATE_HOSTS": "maybe"}},
		{name: "bad env refresh", env: map[string]string{"TABTINT_REFRESH_FAVICONS": "often"}},
		{name: "bad yaml", body: "colours: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			_, err := NewBuilder().WithFile(path).WithEnvConfig().WithLookup(envMap(tt.env)).Build()
			if err == nil {
				t.Fatal("Build() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveScheme(t *testing.T) {
	orig := detectDarkMode
	t.Cleanup(func() { detectDarkMode = orig })

	tests := []struct {
		name   string
		scheme ColorScheme
		detect func() (bool, error)
		want   ColorScheme
	}{
		{name: "explicit light", scheme: SchemeLight, want: SchemeLight},
		{name: "explicit dark", scheme: SchemeDark, want: SchemeDark},
		{name: "auto dark desktop", scheme: SchemeAuto, detect: func() (bool, error) { return true, nil }, want: SchemeDark},
		{name: "auto light desktop", scheme: SchemeAuto, detect: func() (bool, error) { return false, nil }, want: SchemeLight},
		{name: "auto detection fails", scheme: SchemeAuto, detect: func() (bool, error) { return false, errors.New("no portal") }, want: SchemeDark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detectDarkMode = func() (bool, error) {
				if tt.detect == nil {
					t.Fatal("detection should not run for an explicit scheme")
				}
				return tt.detect()
			}

			cfg := Default()
			cfg.ColorScheme = tt.scheme
			if got := cfg.ResolveScheme(); got != tt.want {
				t.Errorf("ResolveScheme() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFallbackTheme(t *testing.T) {
	cfg := Default()
	cfg.ColorScheme = SchemeLight
	if got := cfg.FallbackTheme().ID; got != "default-light" {
		t.Errorf("FallbackTheme() = %q, want default-light", got)
	}
	cfg.ColorScheme = SchemeDark
	if got := cfg.FallbackTheme().ID; got != "default-dark" {
		t.Errorf("FallbackTheme() = %q, want default-dark", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a ,, b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitList() = %v", got)
	}
	if splitList("") != nil {
		t.Error("splitList(\"\") should be nil")
	}
}
