package mandel

import "image/color"

// DefaultContrast is the grayscale falloff per iteration used when none is configured.
const DefaultContrast = 20

var black = color.RGBA{A: 0xff}

// ColorFor maps an escape count to a gray level: white at step 0, darkening by
// contrast per step and clamped at black. Bounded points, and any other
// negative count, are black.
func ColorFor(iterations, contrast int) color.RGBA {
	if iterations < 0 {
		return black
	}
	v := grayLevel(iterations, contrast)
	return color.RGBA{R: v, G: v, B: v, A: 0xff}
}

// grayLevel computes max(255 - iterations*contrast, 0) clamped to [0,255]
// without ever forming a product that could overflow.
func grayLevel(iterations, contrast int) uint8 {
	switch {
	case contrast <= 0:
		// iterations >= 0, so 255 - iterations*contrast >= 255.
		return 0xff
	case iterations > 0xff/contrast:
		return 0
	default:
		return uint8(0xff - iterations*contrast)
	}
}
