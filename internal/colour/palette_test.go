package colour

import (
	"encoding/json"
	"strings"
	"testing"
)

// paletteOf builds a palette with a count of one per colour.
func paletteOf(colors ...Color) *Palette {
	entries := make([]Entry, len(colors))
	for i, c := range colors {
		entries[i] = Entry{Color: c, Count: 1}
	}
	return &Palette{Entries: entries}
}

func TestPaletteDominant(t *testing.T) {
	tests := []struct {
		name    string
		palette *Palette
		want    Color
		wantOK  bool
	}{
		{name: "nil palette", palette: nil},
		{name: "empty palette", palette: paletteOf()},
		{
			name:    "first entry wins",
			palette: paletteOf(New(1, 2, 3), New(4, 5, 6)),
			want:    New(1, 2, 3),
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.palette.Dominant()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Dominant() = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPaletteToHex(t *testing.T) {
	palette := paletteOf(New(26, 43, 60), New(255, 255, 255))

	got := palette.ToHex()
	want := []string{"#1a2b3c", "#ffffff"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ToHex()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPaletteToJSON(t *testing.T) {
	palette := &Palette{Entries: []Entry{
		{Color: New(255, 0, 0), Count: 7},
		{Color: New(0, 0, 255), Count: 2},
	}}

	data, err := palette.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded PaletteJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Count != 2 {
		t.Errorf("count = %d, want 2", decoded.Count)
	}
	if decoded.Colors[0].Hex != "#ff0000" || decoded.Colors[0].Count != 7 {
		t.Errorf("first colour = %+v, want #ff0000 x7", decoded.Colors[0])
	}
	if decoded.Colors[1].RGB != (RGB{R: 0, G: 0, B: 255}) {
		t.Errorf("second colour rgb = %+v", decoded.Colors[1].RGB)
	}
}

func TestPaletteString(t *testing.T) {
	if got := paletteOf().String(); got != "Empty palette" {
		t.Errorf("String() = %q, want %q", got, "Empty palette")
	}

	got := paletteOf(New(255, 0, 0)).String()
	if !strings.Contains(got, "#ff0000") || !strings.Contains(got, "rgb(255, 0, 0)") {
		t.Errorf("String() = %q, missing colour", got)
	}
}
