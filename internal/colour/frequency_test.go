package colour

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

// newIcon builds an NRGBA image whose pixels come from fill.
func newIcon(w, h int, fill func(x, y int) color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, fill(x, y))
		}
	}
	return img
}

func solid(c color.NRGBA) func(int, int) color.NRGBA {
	return func(int, int) color.NRGBA { return c }
}

func TestFrequencyExtractorFiltersBackground(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{
			name: "pure white",
			img:  newIcon(16, 16, solid(color.NRGBA{R: 255, G: 255, B: 255, A: 255})),
		},
		{
			name: "near white",
			img:  newIcon(16, 16, solid(color.NRGBA{R: 241, G: 250, B: 245, A: 255})),
		},
		{
			name: "fully transparent",
			img:  newIcon(16, 16, solid(color.NRGBA{R: 200, G: 10, B: 10, A: 0})),
		},
		{
			name: "mixed white and transparent",
			img: newIcon(8, 8, func(x, _ int) color.NRGBA {
				if x%2 == 0 {
					return color.NRGBA{R: 250, G: 250, B: 250, A: 255}
				}
				return color.NRGBA{}
			}),
		},
	}

	extractor := NewFrequencyExtractor(TransparencyAlpha)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			palette, err := extractor.Extract(tt.img, MaxColours)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if palette.Len() != 0 {
				t.Errorf("Extract() returned %d colours, want 0: %v", palette.Len(), palette.ToHex())
			}
		})
	}
}

func TestFrequencyExtractorKeepsLightButNotNearWhite(t *testing.T) {
	// 240 is on the boundary and must be kept.
	img := newIcon(2, 2, solid(color.NRGBA{R: 240, G: 255, B: 255, A: 255}))

	palette, err := NewFrequencyExtractor(TransparencyAlpha).Extract(img, MaxColours)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if palette.Len() != 1 {
		t.Fatalf("Extract() returned %d colours, want 1", palette.Len())
	}
}

func TestFrequencyExtractorRanksByCount(t *testing.T) {
	red := color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	blue := color.NRGBA{R: 0, G: 0, B: 255, A: 255}

	// Blue is seen first but red covers more pixels.
	img := newIcon(4, 4, func(x, y int) color.NRGBA {
		if y == 0 && x < 2 {
			return blue
		}
		return red
	})

	palette, err := NewFrequencyExtractor(TransparencyAlpha).Extract(img, MaxColours)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if palette.Len() != 2 {
		t.Fatalf("Extract() returned %d colours, want 2", palette.Len())
	}

	if got := palette.Entries[0]; got.Color != New(255, 0, 0) || got.Count != 14 {
		t.Errorf("first entry = %+v, want red x14", got)
	}
	if got := palette.Entries[1]; got.Color != New(0, 0, 255) || got.Count != 2 {
		t.Errorf("second entry = %+v, want blue x2", got)
	}
}

func TestFrequencyExtractorTiesKeepFirstSeenOrder(t *testing.T) {
	colours := []color.NRGBA{
		{R: 10, G: 20, B: 30, A: 255},
		{R: 200, G: 20, B: 30, A: 255},
		{R: 10, G: 200, B: 30, A: 255},
		{R: 10, G: 20, B: 200, A: 255},
	}
	img := newIcon(len(colours), 3, func(x, _ int) color.NRGBA { return colours[x] })

	for range 5 {
		palette, err := NewFrequencyExtractor(TransparencyAlpha).Extract(img, MaxColours)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if palette.Len() != len(colours) {
			t.Fatalf("Extract() returned %d colours, want %d", palette.Len(), len(colours))
		}
		for i, want := range colours {
			if got := palette.Entries[i].Color; got != New(want.R, want.G, want.B) {
				t.Errorf("entry %d = %s, want %s", i, got.Hex(), New(want.R, want.G, want.B).Hex())
			}
		}
	}
}

func TestFrequencyExtractorCapsResult(t *testing.T) {
	// 64 distinct colours, none near-white or transparent.
	img := newIcon(8, 8, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(10 + x*20), G: uint8(10 + y*20), B: 100, A: 255}
	})

	tests := []struct {
		name  string
		count int
		want  int
	}{
		{name: "default", count: MaxColours, want: MaxColours},
		{name: "fewer", count: 3, want: 3},
		{name: "above maximum", count: 50, want: MaxColours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			palette, err := NewFrequencyExtractor(TransparencyAlpha).Extract(img, tt.count)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if palette.Len() != tt.want {
				t.Errorf("Extract() returned %d colours, want %d", palette.Len(), tt.want)
			}
		})
	}
}

func TestFrequencyExtractorTransparencyModes(t *testing.T) {
	// Opaque pure green has a zero red channel.
	green := color.NRGBA{R: 0, G: 200, B: 0, A: 255}
	img := newIcon(4, 4, solid(green))

	alpha, err := NewFrequencyExtractor(TransparencyAlpha).Extract(img, MaxColours)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if alpha.Len() != 1 {
		t.Errorf("alpha mode returned %d colours, want 1", alpha.Len())
	}

	sentinel, err := NewFrequencyExtractor(TransparencyRedSentinel).Extract(img, MaxColours)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if sentinel.Len() != 0 {
		t.Errorf("red-sentinel mode returned %d colours, want 0", sentinel.Len())
	}
}

func TestFrequencyExtractorAlphaThreshold(t *testing.T) {
	faint := color.NRGBA{R: 120, G: 40, B: 40, A: 20}
	img := newIcon(2, 2, solid(faint))

	extractor := NewFrequencyExtractor(TransparencyAlpha)
	palette, err := extractor.Extract(img, MaxColours)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if palette.Len() != 1 {
		t.Fatalf("default threshold returned %d colours, want 1", palette.Len())
	}

	extractor.AlphaThreshold = 128
	palette, err = extractor.Extract(img, MaxColours)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if palette.Len() != 0 {
		t.Errorf("threshold 128 returned %d colours, want 0", palette.Len())
	}
}

func TestFrequencyExtractorDoesNotMutateInput(t *testing.T) {
	img := newIcon(8, 8, func(x, y int) color.NRGBA {
		return color.NRGBA{R: uint8(x * 30), G: uint8(y * 30), B: 255, A: uint8(x * 36)}
	})
	before := bytes.Clone(img.Pix)

	if _, err := NewFrequencyExtractor(TransparencyAlpha).Extract(img, MaxColours); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !bytes.Equal(before, img.Pix) {
		t.Error("Extract() modified the input image")
	}
}

func TestFrequencyExtractorInvalidInput(t *testing.T) {
	extractor := NewFrequencyExtractor(TransparencyAlpha)

	if _, err := extractor.Extract(nil, MaxColours); err == nil {
		t.Error("Extract(nil) expected error")
	}
	if _, err := extractor.Extract(newIcon(1, 1, solid(color.NRGBA{A: 255})), 0); err == nil {
		t.Error("Extract(count=0) expected error")
	}
}

func TestSinglePixel(t *testing.T) {
	tests := []struct {
		name  string
		pixel color.NRGBA
		want  []Color
	}{
		{
			name:  "red",
			pixel: color.NRGBA{R: 255, A: 255},
			want:  []Color{New(255, 0, 0)},
		},
		{
			name:  "white",
			pixel: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
			want:  []Color{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			palette, err := NewFrequencyExtractor(TransparencyAlpha).Extract(newIcon(1, 1, solid(tt.pixel)), MaxColours)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			got := palette.Colors()
			if len(got) != len(tt.want) {
				t.Fatalf("Extract() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("colour %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractorConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  ExtractorConfig
		wantErr bool
	}{
		{name: "default", config: DefaultExtractorConfig()},
		{name: "unknown algorithm", config: ExtractorConfig{Algorithm: "kmeans", ColorCount: 5, Transparency: TransparencyAlpha}, wantErr: true},
		{name: "zero colours", config: ExtractorConfig{Algorithm: AlgorithmFrequency, ColorCount: 0, Transparency: TransparencyAlpha}, wantErr: true},
		{name: "too many colours", config: ExtractorConfig{Algorithm: AlgorithmFrequency, ColorCount: 11, Transparency: TransparencyAlpha}, wantErr: true},
		{name: "bad transparency", config: ExtractorConfig{Algorithm: AlgorithmFrequency, ColorCount: 5, Transparency: "luma"}, wantErr: true},
		{name: "legacy sentinel", config: ExtractorConfig{Algorithm: AlgorithmFrequency, ColorCount: 5, Transparency: TransparencyRedSentinel}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewExtractor(t *testing.T) {
	extractor, err := NewExtractor(DefaultExtractorConfig())
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}
	if _, ok := extractor.(*FrequencyExtractor); !ok {
		t.Errorf("NewExtractor() returned %T, want *FrequencyExtractor", extractor)
	}

	if _, err := NewExtractor(ExtractorConfig{Algorithm: "mediancut"}); err == nil {
		t.Error("NewExtractor(mediancut) expected error")
	}
}
