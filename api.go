package mandel

import (
	"fmt"
	"image"
)

// Frame is a completed image together with the viewport it was rendered for.
type Frame struct {
	Image    *image.RGBA
	Viewport Viewport
	// Generation increases with every viewport change of a Controller.
	Generation uint64
	// Preview is set for reduced-resolution frames of a progressive render.
	Preview bool
}

// ImageSink presents completed frames. A Controller never calls Show
// concurrently with itself and never shows a frame older than one it has
// already shown.
type ImageSink interface {
	Show(f Frame) error
}

// ImageSinkFunc adapts a function to ImageSink.
type ImageSinkFunc func(f Frame) error

func (fn ImageSinkFunc) Show(f Frame) error { return fn(f) }

// GestureSource delivers user gestures. The channel is closed when the source
// has no more input.
type GestureSource interface {
	Gestures() <-chan Gesture
}

// Direction of a zoom gesture.
type Direction int

const (
	ZoomOut Direction = -1
	ZoomIn  Direction = 1
)

// extentFactor returns the multiplier applied to the viewport extents.
func (d Direction) extentFactor(zoomFactor float64) (float64, error) {
	switch d {
	case ZoomIn:
		return 1 / zoomFactor, nil
	case ZoomOut:
		return zoomFactor, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
}

func (d Direction) String() string {
	switch d {
	case ZoomIn:
		return "in"
	case ZoomOut:
		return "out"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// GestureKind selects how a Gesture is interpreted.
type GestureKind int

const (
	GestureZoom GestureKind = iota + 1
	GesturePan
)

// Gesture is a single user interaction.
//
// For GestureZoom, X and Y are the cursor position as a fraction of the
// display area in [0,1]. For GesturePan they are the drag delta as a fraction
// of the display area.
type Gesture struct {
	Kind      GestureKind
	X, Y      float64
	Direction Direction
}

// ZoomGesture is shorthand for a zoom at cursor fraction (x, y).
func ZoomGesture(x, y float64, d Direction) Gesture {
	return Gesture{Kind: GestureZoom, X: x, Y: y, Direction: d}
}

// PanGesture is shorthand for a drag of (dx, dy).
func PanGesture(dx, dy float64) Gesture {
	return Gesture{Kind: GesturePan, X: dx, Y: dy}
}
