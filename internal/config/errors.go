package config

import "errors"

// Configuration errors, checked with errors.Is.
var (
	// ErrConfigNotFound is returned when an explicitly named config file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	ErrInvalidColorScheme = errors.New("invalid color scheme: must be auto, dark or light")
	ErrInvalidExtractor   = errors.New("invalid extractor settings")
	ErrInvalidDelay       = errors.New("invalid delay: must be non-negative")
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be non-negative")
	ErrInvalidLogLevel    = errors.New("invalid log level")
)
