package mandel

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// DefaultPreviewScale is the resolution factor of progressive previews.
const DefaultPreviewScale = 0.25

// RenderPreview computes req at a reduced resolution and scales the result
// back up to req's dimensions with bilinear interpolation. scale must be in
// (0, 1]; at 1 it is equivalent to Render.
func (rz Rasterizer) RenderPreview(ctx context.Context, req RenderRequest, scale float64) (*image.RGBA, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !(scale > 0 && scale <= 1) {
		return nil, fmt.Errorf("%w: preview scale %g", ErrInvalidParams, scale)
	}

	small := req
	small.Width = max(1, int(float64(req.Width)*scale))
	small.Height = max(1, int(float64(req.Height)*scale))
	if small.Width == req.Width && small.Height == req.Height {
		return rz.Render(ctx, req)
	}

	lo, err := rz.Render(ctx, small)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	draw.BiLinear.Scale(dst, dst.Bounds(), lo, lo.Bounds(), draw.Src, nil)
	return dst, nil
}
