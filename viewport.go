package mandel

import (
	"fmt"
	"math"
)

// Viewport is the rectangle of the complex plane mapped onto the pixel grid.
// Real values increase to the right, imaginary values increase downwards.
type Viewport struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// DefaultViewport is [-2,2] × [-2,2].
var DefaultViewport = Viewport{Xmin: -2, Xmax: 2, Ymin: -2, Ymax: 2}

// Validate reports ErrInvalidViewport unless all bounds are finite and
// min < max on both axes.
func (v Viewport) Validate() error {
	for _, f := range [...]float64{v.Xmin, v.Xmax, v.Ymin, v.Ymax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite bound in %s", ErrInvalidViewport, v)
		}
	}
	// Compare the extents too: distinct bounds can still produce a zero or
	// infinite width once subtracted.
	w, h := v.Width(), v.Height()
	if !(v.Xmin < v.Xmax) || !(w > 0) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: real axis [%g, %g]", ErrInvalidViewport, v.Xmin, v.Xmax)
	}
	if !(v.Ymin < v.Ymax) || !(h > 0) || math.IsInf(h, 0) {
		return fmt.Errorf("%w: imaginary axis [%g, %g]", ErrInvalidViewport, v.Ymin, v.Ymax)
	}
	return nil
}

// Width is the extent along the real axis.
func (v Viewport) Width() float64 { return v.Xmax - v.Xmin }

// Height is the extent along the imaginary axis.
func (v Viewport) Height() float64 { return v.Ymax - v.Ymin }

// PointAt returns the plane point at the given fraction of the display area,
// where (0,0) is the top-left corner and (1,1) the bottom-right one.
func (v Viewport) PointAt(fx, fy float64) Complex {
	return Complex{
		Re: fx*v.Width() + v.Xmin,
		Im: fy*v.Height() + v.Ymin,
	}
}

// Fraction is the inverse of PointAt.
func (v Viewport) Fraction(c Complex) (fx, fy float64) {
	return (c.Re - v.Xmin) / v.Width(), (c.Im - v.Ymin) / v.Height()
}

// Pixel returns the plane coordinate sampled for pixel (px, py) of a w × h grid.
// Samples are aligned to the pixel's top-left corner.
func (v Viewport) Pixel(px, py, w, h int) Complex {
	return Complex{
		Re: v.Xmin + (v.Xmax-v.Xmin)*float64(px)/float64(w),
		Im: v.Ymin + (v.Ymax-v.Ymin)*float64(py)/float64(h),
	}
}

// Zoom scales both extents by factor while keeping the plane point under the
// cursor fraction (fx, fy) at the same place on screen. A factor below 1
// zooms in.
func (v Viewport) Zoom(fx, fy, factor float64) Viewport {
	m := v.PointAt(fx, fy)
	w := v.Width() * factor
	h := v.Height() * factor
	xmin := m.Re - (m.Re-v.Xmin)*factor
	ymin := m.Im - (m.Im-v.Ymin)*factor
	return Viewport{Xmin: xmin, Xmax: xmin + w, Ymin: ymin, Ymax: ymin + h}
}

// Pan moves the viewport so that content follows a drag of (dx, dy), given as
// fractions of the display area. Extents are unchanged.
func (v Viewport) Pan(dx, dy float64) Viewport {
	ox := dx * v.Width()
	oy := dy * v.Height()
	return Viewport{Xmin: v.Xmin - ox, Xmax: v.Xmax - ox, Ymin: v.Ymin - oy, Ymax: v.Ymax - oy}
}

func (v Viewport) String() string {
	return fmt.Sprintf("[%g, %g]×[%g, %g]", v.Xmin, v.Xmax, v.Ymin, v.Ymax)
}
