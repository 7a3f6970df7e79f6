// Package image provides utilities for loading and decoding favicons.
package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"net/url"
	"os"
	"strings"

	ico "github.com/sergeymakinen/go-ico"
	_ "golang.org/x/image/bmp"  // Register BMP format
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP format
)

// DefaultThumbnailSize is the edge length favicons are reduced to before extraction.
const DefaultThumbnailSize = 64

// icoMagic is the header of ICO files (reserved 0, type 1).
var icoMagic = []byte{0x00, 0x00, 0x01, 0x00}

// Fetcher retrieves remote favicon bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Loader loads favicons from files, data URIs and, when a Fetcher is set, HTTP(S) URLs.
type Loader struct {
	fetcher Fetcher
}

// NewLoader creates a Loader. fetcher may be nil to disable remote favicons.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load loads and decodes a favicon.
// Supported formats: ICO, PNG, GIF, JPEG, BMP, WebP.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	if src == "" {
		return nil, fmt.Errorf("favicon source cannot be empty")
	}

	var data []byte
	var err error

	switch {
	case strings.HasPrefix(src, "data:"):
		data, err = DecodeDataURI(src)
	case IsRemote(src):
		if l.fetcher == nil {
			return nil, fmt.Errorf("remote favicons are disabled: %s", src)
		}
		data, err = l.fetcher.Fetch(ctx, src)
	default:
		data, err = readFile(src)
	}
	if err != nil {
		return nil, err
	}

	img, _, err := Decode(data)
	return img, err
}

// IsRemote reports whether src is an HTTP(S) URL.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// readFile reads a local favicon file.
func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("favicon file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat favicon file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 - User-specified favicon path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read favicon file: %w", err)
	}
	return data, nil
}

// Decode decodes favicon bytes, returning the image and its format name.
// ICO files yield their largest entry.
func Decode(data []byte) (image.Image, string, error) {
	if bytes.HasPrefix(data, icoMagic) {
		img, err := ico.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "ico", fmt.Errorf("failed to decode image (format: ico): %w", err)
		}
		return img, "ico", nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return img, format, nil
}

// DecodeDataURI returns the payload of a data: URI.
func DecodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI: missing ','")
	}

	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 data URI: %w", err)
		}
		return data, nil
	}

	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI: %w", err)
	}
	return []byte(data), nil
}

// Thumbnail returns img scaled down so neither edge exceeds size.
// Nearest-neighbour sampling keeps the icon's exact colours. Images already
// within size are returned as-is.
func Thumbnail(img image.Image, size int) image.Image {
	if size <= 0 {
		size = DefaultThumbnailSize
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return img
	}

	if w >= h {
		h = max(1, h*size/w)
		w = size
	} else {
		w = max(1, w*size/h)
		h = size
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ValidateImagePath checks that a favicon source looks loadable without decoding it fully.
// URLs and data URIs are accepted as-is.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("favicon path cannot be empty")
	}
	if IsRemote(path) || strings.HasPrefix(path, "data:") {
		return nil
	}

	data, err := readFile(path)
	if err != nil {
		return err
	}
	if bytes.HasPrefix(data, icoMagic) {
		return nil
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	return nil
}
