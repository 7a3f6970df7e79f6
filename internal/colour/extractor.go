package colour

import (
	"fmt"
	"image"
)

// MaxColours is the largest palette an extractor will return.
const MaxColours = 10

// Extractor defines the interface for color extraction algorithms.
type Extractor interface {
	// Extract extracts a color palette from an image.
	// The count parameter specifies the number of colors to extract.
	Extract(img image.Image, count int) (*Palette, error)
}

// Algorithm represents the color extraction algorithm type.
type Algorithm string

const (
	// AlgorithmFrequency ranks exact colours by how many pixels use them.
	AlgorithmFrequency Algorithm = "frequency"

	// AlgorithmKMeans groups similar colours before ranking them, which
	// suits larger or anti-aliased icons better than exact counting.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmFrequency,
		AlgorithmKMeans,
	}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// TransparencyMode selects how extractors decide a pixel is background.
type TransparencyMode string

const (
	// TransparencyAlpha skips pixels whose alpha is below the threshold.
	TransparencyAlpha TransparencyMode = "alpha"

	// TransparencyRedSentinel skips any pixel whose red channel is 0,
	// whatever its alpha. It reproduces the rule older tab-colouring
	// scripts used and drops legitimate colours such as pure green or blue.
	TransparencyRedSentinel TransparencyMode = "red-sentinel"
)

// IsValid reports whether m names a known mode.
func (m TransparencyMode) IsValid() bool {
	return m == TransparencyAlpha || m == TransparencyRedSentinel
}

// NewExtractor creates a new Extractor based on the configuration.
// Returns an error if the algorithm is not recognised.
func NewExtractor(config ExtractorConfig) (Extractor, error) {
	switch config.Algorithm {
	case AlgorithmFrequency:
		return NewFrequencyExtractor(config.Transparency), nil
	case AlgorithmKMeans:
		return NewKMeansExtractor(config.Transparency), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", config.Algorithm, ValidAlgorithms())
	}
}

// ExtractorConfig holds configuration for color extraction.
type ExtractorConfig struct {
	Algorithm    Algorithm
	ColorCount   int
	Transparency TransparencyMode
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Algorithm:    AlgorithmFrequency,
		ColorCount:   MaxColours,
		Transparency: TransparencyAlpha,
	}
}

// Validate validates the extractor configuration.
func (c ExtractorConfig) Validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("invalid algorithm: %s", c.Algorithm)
	}
	if c.ColorCount < 1 {
		return fmt.Errorf("color count must be at least 1, got %d", c.ColorCount)
	}
	if c.ColorCount > MaxColours {
		return fmt.Errorf("color count too large: %d (maximum: %d)", c.ColorCount, MaxColours)
	}
	if !c.Transparency.IsValid() {
		return fmt.Errorf("invalid transparency mode: %s (valid: %s, %s)", c.Transparency, TransparencyAlpha, TransparencyRedSentinel)
	}
	return nil
}
