package colour

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
)

// KMeansExtractor groups the foreground pixels of an image into count
// clusters and ranks the cluster centres by size. Centres are seeded by
// farthest-point selection, so the same icon always yields the same palette.
type KMeansExtractor struct {
	Transparency   TransparencyMode
	AlphaThreshold uint8

	maxIterations int
	convergence   float64
	maxSamples    int
}

// NewKMeansExtractor creates a KMeansExtractor with default settings.
func NewKMeansExtractor(mode TransparencyMode) *KMeansExtractor {
	if mode == "" {
		mode = TransparencyAlpha
	}
	return &KMeansExtractor{
		Transparency:   mode,
		AlphaThreshold: DefaultAlphaThreshold,
		maxIterations:  20,
		convergence:    2.0,
		maxSamples:     4096,
	}
}

// Extract returns up to count cluster centres, largest cluster first.
// Each entry's Count is the number of sampled pixels in its cluster. When
// the image holds no more distinct colours than requested the exact colours
// are returned, ranked as the frequency extractor ranks them.
func (e *KMeansExtractor) Extract(img image.Image, count int) (*Palette, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", count)
	}
	count = min(count, MaxColours)

	points := e.samplePixels(img)
	if len(points) == 0 {
		return &Palette{}, nil
	}

	distinct := make(map[point3D]struct{})
	for _, p := range points {
		distinct[p] = struct{}{}
		if len(distinct) > count {
			break
		}
	}
	if len(distinct) <= count {
		freq := &FrequencyExtractor{Transparency: e.Transparency, AlphaThreshold: e.AlphaThreshold}
		return freq.Extract(img, count)
	}

	centroids, sizes := e.kmeans(points, count)

	entries := make([]Entry, 0, len(centroids))
	for i, c := range centroids {
		if sizes[i] == 0 {
			continue
		}
		entries = append(entries, Entry{
			Color: New(channel(c.R/255), channel(c.G/255), channel(c.B/255)),
			Count: sizes[i],
		})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(b.Count, a.Count)
	})

	return &Palette{Entries: entries}, nil
}

// point3D is a colour in RGB space, channels 0-255.
type point3D struct {
	R, G, B float64
}

func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// samplePixels collects the foreground pixels of img, stepping over a grid
// when the image is larger than maxSamples.
func (e *KMeansExtractor) samplePixels(img image.Image) []point3D {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	step := 1
	if total > e.maxSamples {
		step = max(int(math.Sqrt(float64(total)/float64(e.maxSamples))), 1)
	}

	points := make([]point3D, 0, min(total, e.maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if isBackground(px, e.Transparency, e.AlphaThreshold) {
				continue
			}
			points = append(points, point3D{R: float64(px.R), G: float64(px.G), B: float64(px.B)})
		}
	}
	return points
}

// kmeans clusters points into k groups and returns the centres with the
// number of points assigned to each.
func (e *KMeansExtractor) kmeans(points []point3D, k int) ([]point3D, []int) {
	centroids := initCentroids(points, k)
	assignments := make([]int, len(points))

	for range e.maxIterations {
		changed := 0
		for i, p := range points {
			nearest := nearestCentroid(p, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}
		if float64(changed)/float64(len(points)) < 0.01 {
			break
		}

		next := recalculateCentroids(centroids, points, assignments)
		movement := 0.0
		for i := range centroids {
			movement += centroids[i].distance(next[i])
		}
		centroids = next

		if movement/float64(k) < e.convergence {
			break
		}
	}

	// Final assignment against the settled centres.
	sizes := make([]int, k)
	for _, p := range points {
		sizes[nearestCentroid(p, centroids)]++
	}
	return centroids, sizes
}

// initCentroids starts from the first sampled pixel and repeatedly adds the
// pixel farthest from every centre chosen so far.
func initCentroids(points []point3D, k int) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[0])

	for len(centroids) < k {
		farthest, best := 0, -1.0
		for i, p := range points {
			if d := p.distance(centroids[nearestCentroid(p, centroids)]); d > best {
				farthest, best = i, d
			}
		}
		if best == 0 {
			// Fewer distinct colours than clusters; the spare centre stays empty.
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{R: last.R + 0.1, G: last.G + 0.1, B: last.B + 0.1})
			continue
		}
		centroids = append(centroids, points[farthest])
	}
	return centroids
}

func nearestCentroid(p point3D, centroids []point3D) int {
	best := math.MaxFloat64
	nearest := 0
	for i, c := range centroids {
		if d := p.distance(c); d < best {
			best = d
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids moves every centre to the mean of its points.
// A centre that lost all its points stays where it was.
func recalculateCentroids(prev, points []point3D, assignments []int) []point3D {
	k := len(prev)
	sums := make([]point3D, k)
	counts := make([]int, k)
	for i, p := range points {
		c := assignments[i]
		sums[c].R += p.R
		sums[c].G += p.G
		sums[c].B += p.B
		counts[c]++
	}

	centroids := make([]point3D, k)
	for i := range k {
		if counts[i] == 0 {
			centroids[i] = prev[i]
			continue
		}
		n := float64(counts[i])
		centroids[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
	}
	return centroids
}
