package colour

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"slices"
)

const (
	// nearWhite is the per-channel level above which a pixel counts as white background.
	nearWhite = 240

	// DefaultAlphaThreshold skips only fully transparent pixels.
	DefaultAlphaThreshold uint8 = 1
)

// FrequencyExtractor ranks the exact RGB colours of an image by pixel count.
// Transparent and near-white pixels are ignored. It is meant for icon-sized
// bitmaps; larger images should be thumbnailed first.
type FrequencyExtractor struct {
	Transparency TransparencyMode

	// AlphaThreshold is the minimum alpha a pixel needs to be counted
	// when Transparency is TransparencyAlpha.
	AlphaThreshold uint8
}

// NewFrequencyExtractor creates a FrequencyExtractor with the default alpha threshold.
func NewFrequencyExtractor(mode TransparencyMode) *FrequencyExtractor {
	if mode == "" {
		mode = TransparencyAlpha
	}
	return &FrequencyExtractor{
		Transparency:   mode,
		AlphaThreshold: DefaultAlphaThreshold,
	}
}

// Extract returns up to count colours (never more than MaxColours), most
// frequent first. Colours with equal counts keep the order in which they were
// first seen scanning rows top to bottom. An image with no qualifying pixels
// yields an empty palette, not an error.
func (e *FrequencyExtractor) Extract(img image.Image, count int) (*Palette, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", count)
	}
	count = min(count, MaxColours)

	bounds := img.Bounds()
	index := make(map[uint32]int)
	var entries []Entry

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if e.skip(px) {
				continue
			}

			key := uint32(px.R)<<16 | uint32(px.G)<<8 | uint32(px.B)
			if i, ok := index[key]; ok {
				entries[i].Count++
				continue
			}
			index[key] = len(entries)
			entries = append(entries, Entry{Color: New(px.R, px.G, px.B), Count: 1})
		}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(entries) > count {
		entries = entries[:count]
	}

	return &Palette{Entries: entries}, nil
}

// skip reports whether a pixel is background: transparent or near-white.
func (e *FrequencyExtractor) skip(px color.NRGBA) bool {
	return isBackground(px, e.Transparency, e.AlphaThreshold)
}

func isBackground(px color.NRGBA, mode TransparencyMode, threshold uint8) bool {
	switch mode {
	case TransparencyRedSentinel:
		if px.R == 0 {
			return true
		}
	default:
		if px.A < max(threshold, 1) {
			return true
		}
	}
	return px.R > nearWhite && px.G > nearWhite && px.B > nearWhite
}
