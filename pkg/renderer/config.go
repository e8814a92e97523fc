package renderer

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned for render parameters that cannot produce an image
var ErrInvalidConfig = errors.New("invalid render config")

// Config contains rendering configuration
type Config struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel
	MaxDepth        int   // Maximum ray bounce depth
	NumWorkers      int   // Worker goroutines; 0 uses DefaultNumWorkers
	Seed            int64 // Base seed; each scanline derives its own stream

	// OnRow, if set, is called after each finished scanline with the
	// number of rows done so far. Calls are serialized.
	OnRow func(row, done, total int)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Seed:            42,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("%w: samples per pixel %d must be positive", ErrInvalidConfig, c.SamplesPerPixel)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: max depth %d must be at least 1", ErrInvalidConfig, c.MaxDepth)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("%w: worker count %d must not be negative", ErrInvalidConfig, c.NumWorkers)
	}
	return nil
}

// Merge returns c with every non-zero field of override applied.
// A zero Seed in override keeps c.Seed; set Seed on c directly to render
// with seed 0.
func (c Config) Merge(override Config) Config {
	if override.Width > 0 {
		c.Width = override.Width
	}
	if override.Height > 0 {
		c.Height = override.Height
	}
	if override.SamplesPerPixel > 0 {
		c.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth > 0 {
		c.MaxDepth = override.MaxDepth
	}
	if override.NumWorkers > 0 {
		c.NumWorkers = override.NumWorkers
	}
	if override.Seed != 0 {
		c.Seed = override.Seed
	}
	if override.OnRow != nil {
		c.OnRow = override.OnRow
	}
	return c
}
