// Favicon generator for the sample session in testdata/session.yaml
package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

// icon describes a generated favicon: a square of fill inside a transparent
// margin, optionally on a white plate the extractor should ignore.
type icon struct {
	name   string
	fill   color.NRGBA
	margin int
	plate  bool
}

func main() {
	icons := []icon{
		{name: "red.png", fill: color.NRGBA{R: 220, G: 30, B: 40, A: 255}, margin: 2},
		{name: "blue.png", fill: color.NRGBA{R: 30, G: 90, B: 200, A: 255}, margin: 2},
		{name: "yellow.png", fill: color.NRGBA{R: 250, G: 210, B: 40, A: 255}, margin: 0},
		{name: "plated.png", fill: color.NRGBA{R: 20, G: 140, B: 60, A: 255}, margin: 4, plate: true},
	}

	for _, ic := range icons {
		if err := write(filepath.Join("testdata", ic.name), render(ic, 32)); err != nil {
			panic(err)
		}
		println("Favicon created: testdata/" + ic.name)
	}
}

func render(ic icon, size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	for y := range size {
		for x := range size {
			inside := x >= ic.margin && x < size-ic.margin && y >= ic.margin && y < size-ic.margin
			switch {
			case inside:
				img.SetNRGBA(x, y, ic.fill)
			case ic.plate:
				img.SetNRGBA(x, y, white)
			}
		}
	}
	return img
}

func write(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
