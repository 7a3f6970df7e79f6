// Package imagecache downloads remote favicons and keeps them on disk.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/singleflight"

	"github.com/jmylchreest/tabtint/internal/security"
	httputil "github.com/jmylchreest/tabtint/internal/util/http"
)

// CacheOptions configures favicon caching behavior.
type CacheOptions struct {
	// CacheDir is the directory where favicons will be cached.
	// If empty, defaults to $XDG_CACHE_HOME/tabtint/favicons.
	CacheDir string

	// Refresh downloads favicons again even when a cached copy exists.
	Refresh bool

	// BlockPrivateHosts refuses URLs on loopback or private networks.
	BlockPrivateHosts bool

	// Fetch overrides the downloader, mainly for tests.
	Fetch func(ctx context.Context, url string) ([]byte, error)

	Logger hclog.Logger
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "tabtint", "favicons")
}

// Cache serves favicons from disk, downloading them on first use.
// Concurrent requests for one URL share a single download.
type Cache struct {
	dir          string
	refresh      bool
	blockPrivate bool
	fetch        func(ctx context.Context, url string) ([]byte, error)
	logger       hclog.Logger
	group        singleflight.Group
}

// New creates a Cache.
func New(opts CacheOptions) *Cache {
	dir := opts.CacheDir
	if dir == "" {
		dir = DefaultCacheDir()
	}

	fetch := opts.Fetch
	if fetch == nil {
		fetch = func(ctx context.Context, url string) ([]byte, error) {
			return httputil.Fetch(ctx, url, httputil.FetchOptions{})
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Cache{
		dir:          dir,
		refresh:      opts.Refresh,
		blockPrivate: opts.BlockPrivateHosts,
		fetch:        fetch,
		logger:       logger.Named("favicon-cache"),
	}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns where url is cached.
func (c *Cache) Path(url string) string {
	return filepath.Join(c.dir, generateFilename(url))
}

// Fetch returns the favicon bytes for url, from disk when cached.
func (c *Cache) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := security.ValidateFaviconURL(url, !c.blockPrivate); err != nil {
		return nil, err
	}

	path := c.Path(url)
	if !c.refresh {
		if data, err := os.ReadFile(path); err == nil { // #nosec G304 - Path derived from cache dir and URL hash
			c.logger.Trace("cache hit", "url", url)
			return data, nil
		}
	}

	v, err, shared := c.group.Do(url, func() (any, error) {
		c.logger.Debug("downloading favicon", "url", url)
		data, err := c.fetch(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to download favicon: %w", err)
		}

		if err := os.MkdirAll(c.dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		if err := writeAtomic(c.dir, path, data); err != nil {
			return nil, fmt.Errorf("failed to write cached favicon: %w", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Trace("shared in-flight download", "url", url)
	}

	return v.([]byte), nil
}

// writeAtomic writes data to a temporary file in dir and renames it over
// path, so readers never see a partial entry.
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".favicon-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // #nosec G104 - Gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { // #nosec G302 - Cache files need standard read permissions
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// generateFilename creates a deterministic filename from a URL.
// Uses SHA256 hash of URL + original file extension.
func generateFilename(url string) string {
	hash := sha256.Sum256([]byte(url))
	hashStr := fmt.Sprintf("%x", hash[:16])

	ext := filepath.Ext(url)
	if idx := strings.IndexAny(ext, "?#"); idx != -1 {
		ext = ext[:idx]
	}
	if ext == "" || len(ext) > 5 || strings.Contains(ext, "/") {
		ext = ".ico"
	}

	return hashStr + ext
}
