package mandel

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultZoomFactor is the extent ratio of a single zoom step.
	DefaultZoomFactor = 1.1

	DefaultWidth  = 800
	DefaultHeight = 600

	// DefaultPreviewDelay is how long a progressive render waits after the
	// preview before computing full resolution.
	DefaultPreviewDelay = 100 * time.Millisecond
)

// ZoomLimits bounds the magnification of a Controller. Magnification is the
// initial viewport width divided by the current one, so it starts at 1.
type ZoomLimits struct {
	Min, Max float64
}

func (l ZoomLimits) clamp(z float64) float64 {
	return math.Min(math.Max(z, l.Min), l.Max)
}

// Config holds the knobs of a Controller. Start from DefaultConfig and apply
// options.
type Config struct {
	Width, Height int
	Viewport      Viewport
	MaxIterations int
	Contrast      int
	ZoomFactor    float64

	// ZoomLimits clamps magnification when non-nil. Zoom is unbounded otherwise.
	ZoomLimits *ZoomLimits

	Workers   int
	BandWidth int

	// PreviewScale enables progressive rendering when in (0,1).
	PreviewScale float64
	PreviewDelay time.Duration

	// SyncRender renders inside the gesture call instead of on a goroutine.
	SyncRender bool
}

// DefaultConfig returns the defaults: 800×600 pixels over [-2,2]×[-2,2],
// 500 iterations, contrast 20, zoom factor 1.1, unbounded zoom, no preview,
// asynchronous rendering.
func DefaultConfig() Config {
	return Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Viewport:      DefaultViewport,
		MaxIterations: DefaultMaxIterations,
		Contrast:      DefaultContrast,
		ZoomFactor:    DefaultZoomFactor,
		BandWidth:     DefaultBandWidth,
		PreviewDelay:  DefaultPreviewDelay,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, c.Width, c.Height)
	}
	if err := c.Viewport.Validate(); err != nil {
		return err
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalidParams, c.MaxIterations)
	}
	if !(c.ZoomFactor > 1) || math.IsInf(c.ZoomFactor, 0) {
		return fmt.Errorf("%w: zoom factor %g", ErrInvalidParams, c.ZoomFactor)
	}
	if l := c.ZoomLimits; l != nil {
		if !(l.Min > 0 && l.Min <= 1 && l.Max >= 1) || math.IsInf(l.Max, 0) {
			return fmt.Errorf("%w: zoom limits [%g, %g]", ErrInvalidParams, l.Min, l.Max)
		}
	}
	if c.PreviewScale < 0 || c.PreviewScale > 1 || math.IsNaN(c.PreviewScale) {
		return fmt.Errorf("%w: preview scale %g", ErrInvalidParams, c.PreviewScale)
	}
	if c.PreviewDelay < 0 {
		return fmt.Errorf("%w: preview delay %s", ErrInvalidParams, c.PreviewDelay)
	}
	return nil
}

func (c Config) progressive() bool {
	return c.PreviewScale > 0 && c.PreviewScale < 1
}

// Option modifies a Config.
type Option func(*Config)

// WithSize sets the pixel dimensions of rendered frames.
func WithSize(width, height int) Option {
	return func(c *Config) { c.Width, c.Height = width, height }
}

// WithViewport sets the initial viewport.
func WithViewport(v Viewport) Option {
	return func(c *Config) { c.Viewport = v }
}

func WithMaxIterations(n int) Option {
	return func(c *Config) { c.MaxIterations = n }
}

func WithContrast(n int) Option {
	return func(c *Config) { c.Contrast = n }
}

func WithZoomFactor(f float64) Option {
	return func(c *Config) { c.ZoomFactor = f }
}

// WithZoomLimits clamps magnification to [lo, hi].
func WithZoomLimits(lo, hi float64) Option {
	return func(c *Config) { c.ZoomLimits = &ZoomLimits{Min: lo, Max: hi} }
}

// WithWorkers sets the number of render goroutines.
func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

func WithBandWidth(n int) Option {
	return func(c *Config) { c.BandWidth = n }
}

// WithPreview enables progressive rendering: a scale-reduced frame is shown
// first and the full one follows after delay unless another gesture arrives.
func WithPreview(scale float64, delay time.Duration) Option {
	return func(c *Config) { c.PreviewScale, c.PreviewDelay = scale, delay }
}

// WithSyncRender makes gesture methods render before returning.
func WithSyncRender() Option {
	return func(c *Config) { c.SyncRender = true }
}
