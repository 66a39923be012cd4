package mandel

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"runtime"
	"testing"
)

// renderSequential is the plain double loop the parallel rasterizer must match.
func renderSequential(req RenderRequest) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	for w := 0; w < req.Width; w++ {
		x := req.Viewport.Xmin + (req.Viewport.Xmax-req.Viewport.Xmin)*float64(w)/float64(req.Width)
		for h := 0; h < req.Height; h++ {
			y := req.Viewport.Ymin + (req.Viewport.Ymax-req.Viewport.Ymin)*float64(h)/float64(req.Height)
			n := EscapeIterations(Complex{x, y}, req.MaxIterations)
			img.SetRGBA(w, h, ColorFor(n, req.Contrast))
		}
	}
	return img
}

func defaultRequest(w, h int) RenderRequest {
	return RenderRequest{
		Width:         w,
		Height:        h,
		Viewport:      DefaultViewport,
		MaxIterations: DefaultMaxIterations,
		Contrast:      DefaultContrast,
	}
}

func TestRenderFourByFour(t *testing.T) {
	img, err := Rasterizer{}.Render(context.Background(), defaultRequest(4, 4))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 4, 4) {
		t.Fatalf("Bounds() = %v, want 4x4", got)
	}

	// (0,0) samples -2-2i which escapes immediately.
	if got, want := img.RGBAAt(0, 0), (color.RGBA{255, 255, 255, 255}); got != want {
		t.Errorf("pixel (0,0) = %v, want white", got)
	}
	// (2,2) samples the origin, which never escapes.
	if got, want := img.RGBAAt(2, 2), (color.RGBA{0, 0, 0, 255}); got != want {
		t.Errorf("pixel (2,2) = %v, want black", got)
	}
}

func TestRenderMatchesSequential(t *testing.T) {
	reqs := []RenderRequest{
		defaultRequest(61, 47),
		{Width: 40, Height: 30, Viewport: SeahorseValley, MaxIterations: 200, Contrast: 3},
		{Width: 17, Height: 64, Viewport: Viewport{-0.75, -0.73, 0.1, 0.12}, MaxIterations: 300, Contrast: 1},
	}
	rasterizers := []Rasterizer{
		{Workers: 1, BandWidth: 1},
		{Workers: 1},
		{Workers: 3, BandWidth: 5},
		{Workers: 8, BandWidth: 2},
		{Workers: runtime.NumCPU() * 2, BandWidth: 64},
	}

	for _, req := range reqs {
		want := renderSequential(req)
		for _, rz := range rasterizers {
			got, err := rz.Render(context.Background(), req)
			if err != nil {
				t.Fatalf("Render(%+v) error = %v", rz, err)
			}
			if !bytes.Equal(got.Pix, want.Pix) {
				t.Errorf("Render(%+v) on %v differs from sequential evaluation", rz, req.Viewport)
			}
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	req := defaultRequest(50, 50)
	rz := Rasterizer{Workers: 4, BandWidth: 3}
	a, err := rz.Render(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := rz.Render(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("two renders of the same request differ")
	}
}

func TestRenderInvalid(t *testing.T) {
	tests := []struct {
		name string
		req  RenderRequest
		want error
	}{
		{"zero width", defaultRequest(0, 4), ErrInvalidGeometry},
		{"zero height", defaultRequest(4, 0), ErrInvalidGeometry},
		{"negative", defaultRequest(-1, -1), ErrInvalidGeometry},
		{"degenerate viewport", RenderRequest{Width: 4, Height: 4, Viewport: Viewport{1, 1, 0, 1}, MaxIterations: 10}, ErrInvalidViewport},
		{"no iterations", RenderRequest{Width: 4, Height: 4, Viewport: DefaultViewport}, ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Rasterizer{}.Render(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Render() error = %v, want %v", err, tt.want)
			}
			if img != nil {
				t.Error("Render() returned an image for an invalid request")
			}
		})
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img, err := Rasterizer{Workers: 2}.Render(ctx, defaultRequest(100, 100))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want context.Canceled", err)
	}
	if img != nil {
		t.Error("Render() returned a partial image")
	}
}

func TestRenderTileSubRect(t *testing.T) {
	req := defaultRequest(8, 8)
	full := renderSequential(req)

	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	tile := image.Rect(2, 3, 6, 7)
	RenderTile(req, tile, dst)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			got := dst.RGBAAt(x, y)
			if (image.Point{x, y}).In(tile) {
				if want := full.RGBAAt(x, y); got != want {
					t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
				}
			} else if got != (color.RGBA{}) {
				t.Errorf("pixel (%d,%d) outside tile written: %v", x, y, got)
			}
		}
	}
}

func TestSplitColumns(t *testing.T) {
	r := image.Rect(0, 0, 10, 3)
	bands := splitColumns(r, 4)
	want := []image.Rectangle{
		image.Rect(0, 0, 4, 3),
		image.Rect(4, 0, 8, 3),
		image.Rect(8, 0, 10, 3),
	}
	if len(bands) != len(want) {
		t.Fatalf("splitColumns() = %v, want %v", bands, want)
	}
	for i := range want {
		if bands[i] != want[i] {
			t.Errorf("band %d = %v, want %v", i, bands[i], want[i])
		}
	}
}

func TestBandSchedulerProgress(t *testing.T) {
	s := newBandScheduler(splitColumns(image.Rect(0, 0, 4, 2), 2))
	if got := s.finished(); got != 0 {
		t.Errorf("finished() = %v, want 0", got)
	}
	b, ok := s.pop()
	if !ok {
		t.Fatal("pop() found no band")
	}
	s.bandFinished(b)
	if got := s.finished(); got != 0.5 {
		t.Errorf("finished() = %v, want 0.5", got)
	}
	s.pop()
	if _, ok := s.pop(); ok {
		t.Error("pop() returned a band past the end")
	}
}

func BenchmarkRender(b *testing.B) {
	req := defaultRequest(320, 240)
	for _, workers := range []int{1, runtime.GOMAXPROCS(0)} {
		rz := Rasterizer{Workers: workers}
		b.Run(runtimeName(workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := rz.Render(context.Background(), req); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func runtimeName(workers int) string {
	if workers == 1 {
		return "sequential"
	}
	return "parallel"
}
