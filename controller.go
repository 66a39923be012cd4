package mandel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// Controller owns the current viewport of a viewer. Every viewport change
// starts a render; a render superseded by a later change is cancelled and its
// result is never shown, so the sink always ends up displaying the most
// recent viewport.
type Controller struct {
	cfg       Config
	rz        Rasterizer
	sink      ImageSink
	baseWidth float64

	ctx       context.Context
	ctxCancel context.CancelFunc
	wg        sync.WaitGroup

	m        sync.Mutex
	viewport Viewport
	gen      uint64
	cancel   context.CancelFunc
	closed   bool

	// showM serializes sink access and guards frame. Lock order: showM, then m.
	showM sync.Mutex
	frame Frame
	shown bool
}

// NewController validates the configuration and returns a controller that
// presents frames on sink. Nothing is rendered until Refresh or the first
// gesture.
func NewController(sink ImageSink, opts ...Option) (*Controller, error) {
	if sink == nil {
		return nil, errors.New("mandel: nil image sink")
	}
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:       cfg,
		rz:        Rasterizer{Workers: cfg.Workers, BandWidth: cfg.BandWidth},
		sink:      sink,
		baseWidth: cfg.Viewport.Width(),
		ctx:       ctx,
		ctxCancel: cancel,
		viewport:  cfg.Viewport,
	}, nil
}

// Config returns the effective configuration.
func (c *Controller) Config() Config { return c.cfg }

// Viewport returns the current viewport. It may be newer than the viewport of
// the frame currently shown.
func (c *Controller) Viewport() Viewport {
	c.m.Lock()
	defer c.m.Unlock()
	return c.viewport
}

// Magnification is the initial viewport width divided by the current one.
func (c *Controller) Magnification() float64 {
	return c.baseWidth / c.Viewport().Width()
}

// PointAt returns the plane point under the cursor fraction (fx, fy) of the
// current viewport.
func (c *Controller) PointAt(fx, fy float64) Complex {
	return c.Viewport().PointAt(fx, fy)
}

// Frame returns the frame most recently handed to the sink.
func (c *Controller) Frame() (Frame, bool) {
	c.showM.Lock()
	defer c.showM.Unlock()
	return c.frame, c.shown
}

// Refresh renders the current viewport at full resolution and shows it before
// returning. Use it for the first frame.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.update(ctx, "refresh", true, func(v Viewport) (Viewport, bool, error) {
		return v, true, nil
	})
}

// SetViewport replaces the viewport, for example to jump to a landmark region.
// With zoom limits configured, a viewport outside them is scaled about its
// centre to the nearest allowed magnification.
func (c *Controller) SetViewport(ctx context.Context, v Viewport) error {
	if err := v.Validate(); err != nil {
		return err
	}
	v = c.limitViewport(v)
	return c.update(ctx, "set", c.cfg.SyncRender, func(Viewport) (Viewport, bool, error) {
		return v, true, nil
	})
}

// ZoomAt zooms by one step towards (ZoomIn) or away from (ZoomOut) the plane
// point under the cursor fraction (fx, fy). The point stays under the cursor.
//
// With zoom limits configured the step is shortened so that magnification
// stays within them; at the limit the call is a no-op.
//
// Unless SyncRender is set, ZoomAt returns once the new viewport is in place
// and the render continues in the background, bound to the controller's
// lifetime rather than to ctx.
func (c *Controller) ZoomAt(ctx context.Context, fx, fy float64, dir Direction) error {
	factor, err := dir.extentFactor(c.cfg.ZoomFactor)
	if err != nil {
		return err
	}
	if !isFraction(fx) || !isFraction(fy) {
		return fmt.Errorf("%w: cursor (%g, %g) outside display", ErrInvalidParams, fx, fy)
	}
	return c.update(ctx, "zoom "+dir.String(), c.cfg.SyncRender, func(v Viewport) (Viewport, bool, error) {
		f := c.limitFactor(v, factor)
		if f == 1 {
			Logger().Debug("zoom limit reached", "magnification", c.baseWidth/v.Width())
			return v, false, nil
		}
		return v.Zoom(fx, fy, f), true, nil
	})
}

// Pan shifts the viewport so that content follows a drag of (dx, dy)
// display fractions.
func (c *Controller) Pan(ctx context.Context, dx, dy float64) error {
	if !isFinite(dx) || !isFinite(dy) {
		return fmt.Errorf("%w: pan (%g, %g)", ErrInvalidParams, dx, dy)
	}
	if dx == 0 && dy == 0 {
		return nil
	}
	return c.update(ctx, "pan", c.cfg.SyncRender, func(v Viewport) (Viewport, bool, error) {
		return v.Pan(dx, dy), true, nil
	})
}

// Apply dispatches a gesture to ZoomAt or Pan.
func (c *Controller) Apply(ctx context.Context, g Gesture) error {
	switch g.Kind {
	case GestureZoom:
		return c.ZoomAt(ctx, g.X, g.Y, g.Direction)
	case GesturePan:
		return c.Pan(ctx, g.X, g.Y)
	default:
		return fmt.Errorf("%w: unknown gesture kind %d", ErrInvalidParams, g.Kind)
	}
}

// Run applies gestures from src until its channel is closed, ctx is done or
// the controller is closed. Rejected gestures are logged at warn level and do
// not stop the loop.
func (c *Controller) Run(ctx context.Context, src GestureSource) error {
	gestures := src.Gestures()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case g, ok := <-gestures:
			if !ok {
				return nil
			}
			if err := c.Apply(ctx, g); err != nil {
				if errors.Is(err, ErrClosed) {
					return err
				}
				Logger().Warn("gesture rejected", "kind", g.Kind, "x", g.X, "y", g.Y, "err", err)
			}
		}
	}
}

// Wait blocks until every render in flight, background or inline, has
// finished or been abandoned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels any render in flight and waits for it to stop, including an
// inline render that is still handing its frame to the sink.
func (c *Controller) Close() error {
	c.m.Lock()
	if c.closed {
		c.m.Unlock()
		return nil
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	c.m.Unlock()

	c.ctxCancel()
	c.wg.Wait()
	return nil
}

// update computes the next viewport from the current one under the lock,
// supersedes any render in flight and starts a new one.
func (c *Controller) update(ctx context.Context, reason string, inline bool, next func(Viewport) (Viewport, bool, error)) error {
	c.m.Lock()
	if c.closed {
		c.m.Unlock()
		return ErrClosed
	}
	v, changed, err := next(c.viewport)
	if err != nil {
		c.m.Unlock()
		return err
	}
	if !changed {
		c.m.Unlock()
		return nil
	}
	if err := v.Validate(); err != nil {
		// Deep zooms eventually collapse the extents below float64 resolution.
		c.m.Unlock()
		return fmt.Errorf("%s: %w", reason, err)
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	c.viewport = v

	parent := c.ctx
	if inline {
		parent = ctx
	}
	rctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.wg.Add(1)
	c.m.Unlock()

	Logger().Info("viewport changed", "reason", reason, "viewport", v.String(), "generation", gen)

	if inline {
		defer c.wg.Done()
		defer cancel()
		return c.render(rctx, gen, v, false)
	}
	go func() {
		defer c.wg.Done()
		defer cancel()
		err := c.render(rctx, gen, v, c.cfg.progressive())
		if err != nil && !errors.Is(err, context.Canceled) {
			Logger().Error("render failed", "generation", gen, "viewport", v.String(), "err", err)
		}
	}()
	return nil
}

func (c *Controller) request(v Viewport) RenderRequest {
	return RenderRequest{
		Width:         c.cfg.Width,
		Height:        c.cfg.Height,
		Viewport:      v,
		MaxIterations: c.cfg.MaxIterations,
		Contrast:      c.cfg.Contrast,
	}
}

func (c *Controller) render(ctx context.Context, gen uint64, v Viewport, progressive bool) error {
	req := c.request(v)

	if progressive {
		img, err := c.rz.RenderPreview(ctx, req, c.cfg.PreviewScale)
		if err != nil {
			return err
		}
		if err := c.show(Frame{Image: img, Viewport: v, Generation: gen, Preview: true}); err != nil {
			return err
		}

		t := time.NewTimer(c.cfg.PreviewDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}

	img, err := c.rz.Render(ctx, req)
	if err != nil {
		return err
	}
	return c.show(Frame{Image: img, Viewport: v, Generation: gen})
}

// show hands f to the sink unless a newer viewport has been set meanwhile.
func (c *Controller) show(f Frame) error {
	c.showM.Lock()
	defer c.showM.Unlock()

	c.m.Lock()
	current := c.gen
	c.m.Unlock()
	if f.Generation != current {
		Logger().Debug("dropping superseded frame", "generation", f.Generation, "current", current)
		return nil
	}

	if err := c.sink.Show(f); err != nil {
		return fmt.Errorf("show frame %d: %w", f.Generation, err)
	}
	c.frame = f
	c.shown = true
	return nil
}

// limitFactor shortens an extent factor so that the resulting magnification
// respects the configured limits. It never turns a zoom in into a zoom out or
// the reverse: past the limit in the gesture's direction it returns 1.
func (c *Controller) limitFactor(v Viewport, factor float64) float64 {
	l := c.cfg.ZoomLimits
	if l == nil {
		return factor
	}
	zoom := c.baseWidth / v.Width()
	f := zoom / l.clamp(zoom/factor)
	if math.Abs(f-1) < 1e-9 || (f < 1) != (factor < 1) {
		return 1
	}
	return f
}

// limitViewport scales v about its centre so that its magnification lies
// within the configured limits.
func (c *Controller) limitViewport(v Viewport) Viewport {
	l := c.cfg.ZoomLimits
	if l == nil {
		return v
	}
	zoom := c.baseWidth / v.Width()
	if clamped := l.clamp(zoom); clamped != zoom {
		return v.Zoom(0.5, 0.5, zoom/clamped)
	}
	return v
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isFraction(f float64) bool {
	return f >= 0 && f <= 1
}
