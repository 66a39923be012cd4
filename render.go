package mandel

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"
)

// DefaultBandWidth is the number of pixel columns handed to a worker at a time.
const DefaultBandWidth = 16

// RenderRequest describes one image to compute.
type RenderRequest struct {
	Width, Height int
	Viewport      Viewport
	MaxIterations int
	Contrast      int
}

// Validate checks the request before any pixel is mapped, so the pixel to
// plane mapping never divides by zero.
func (r RenderRequest) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, r.Width, r.Height)
	}
	if err := r.Viewport.Validate(); err != nil {
		return err
	}
	if r.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalidParams, r.MaxIterations)
	}
	return nil
}

// Rasterizer computes images by splitting the pixel grid into vertical bands
// and evaluating them on a fixed number of goroutines. The zero value is ready
// to use.
type Rasterizer struct {
	// Workers is the number of goroutines; GOMAXPROCS when <= 0.
	Workers int
	// BandWidth is the number of columns per work item; DefaultBandWidth when <= 0.
	BandWidth int
}

func (rz Rasterizer) workers() int {
	if rz.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return rz.Workers
}

func (rz Rasterizer) bandWidth() int {
	if rz.BandWidth <= 0 {
		return DefaultBandWidth
	}
	return rz.BandWidth
}

// Render computes the full image for req. The result does not depend on the
// number of workers: every pixel is written exactly once, by the worker that
// owns its band.
//
// If ctx is cancelled the partially written image is discarded and ctx.Err()
// is returned.
func (rz Rasterizer) Render(ctx context.Context, req RenderRequest) (*image.RGBA, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	img := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	s := newBandScheduler(splitColumns(img.Bounds(), rz.bandWidth()))
	workers := min(rz.workers(), s.count)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				band, ok := s.pop()
				if !ok {
					return
				}
				RenderTile(req, band, img)
				s.bandFinished(band)
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		Logger().Debug("render abandoned", "viewport", req.Viewport.String(), "done", s.finished())
		return nil, err
	}
	Logger().Debug("render finished",
		"size", img.Bounds().Size().String(),
		"bands", s.count,
		"workers", workers,
		"elapsed", time.Since(start))
	return img, nil
}

// RenderTile evaluates every pixel of tile and writes it into dst. Coordinates
// are global: tile is a sub-rectangle of the req.Width × req.Height grid.
// req must be valid.
func RenderTile(req RenderRequest, tile image.Rectangle, dst *image.RGBA) {
	v := req.Viewport
	for px := tile.Min.X; px < tile.Max.X; px++ {
		for py := tile.Min.Y; py < tile.Max.Y; py++ {
			c := v.Pixel(px, py, req.Width, req.Height)
			n := EscapeIterations(c, req.MaxIterations)
			dst.SetRGBA(px, py, ColorFor(n, req.Contrast))
		}
	}
}

// bandScheduler hands out bands to workers. Bands are disjoint, so workers
// never contend on pixels, only on the queue index.
type bandScheduler struct {
	bands []image.Rectangle
	count int

	m              sync.Mutex
	next           int
	finishedPixels int
	totalPixels    int
}

func newBandScheduler(bands []image.Rectangle) *bandScheduler {
	total := 0
	for _, b := range bands {
		total += b.Dx() * b.Dy()
	}
	return &bandScheduler{bands: bands, count: len(bands), totalPixels: total}
}

func (s *bandScheduler) pop() (image.Rectangle, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.next >= len(s.bands) {
		return image.Rectangle{}, false
	}
	b := s.bands[s.next]
	s.next++
	return b, true
}

func (s *bandScheduler) bandFinished(b image.Rectangle) {
	s.m.Lock()
	s.finishedPixels += b.Dx() * b.Dy()
	s.m.Unlock()
}

// finished reports the fraction of pixels computed so far.
func (s *bandScheduler) finished() float32 {
	s.m.Lock()
	defer s.m.Unlock()
	if s.totalPixels == 0 {
		return 1
	}
	return float32(s.finishedPixels) / float32(s.totalPixels)
}

// splitColumns splits r into full-height bands of bandW columns.
// The rightmost band is narrower if r is not divisible.
func splitColumns(r image.Rectangle, bandW int) []image.Rectangle {
	if bandW <= 0 {
		panic("band width must be positive")
	}

	w := r.Dx()
	bands := make([]image.Rectangle, 0, (w+bandW-1)/bandW)
	for ox := 0; ox < w; ox += bandW {
		bw := min(bandW, w-ox)
		bands = append(bands, image.Rect(r.Min.X+ox, r.Min.Y, r.Min.X+ox+bw, r.Max.Y))
	}
	return bands
}
