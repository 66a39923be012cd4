package main

import (
	"math"
	"testing"

	mandel "github.com/PaulWolfDE/mandelbrot-explorer"
)

func TestZoomLimitOption(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi float64
		want   mandel.ZoomLimits
	}{
		{"max only", 0, 1000, mandel.ZoomLimits{Min: math.SmallestNonzeroFloat64, Max: 1000}},
		{"min only", 0.5, 0, mandel.ZoomLimits{Min: 0.5, Max: math.MaxFloat64}},
		{"both", 0.25, 8, mandel.ZoomLimits{Min: 0.25, Max: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ok := zoomLimitOption(tt.lo, tt.hi)
			if !ok {
				t.Fatalf("zoomLimitOption(%g, %g) reported no limits", tt.lo, tt.hi)
			}
			c, err := mandel.NewController(mandel.ImageSinkFunc(func(mandel.Frame) error { return nil }), o)
			if err != nil {
				t.Fatalf("NewController() error = %v", err)
			}
			defer c.Close()
			if got := c.Config().ZoomLimits; got == nil || *got != tt.want {
				t.Errorf("ZoomLimits = %v, want %v", got, tt.want)
			}
		})
	}

	if _, ok := zoomLimitOption(0, 0); ok {
		t.Error("zoomLimitOption(0, 0) reported limits")
	}
}
