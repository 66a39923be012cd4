package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	mandel "github.com/PaulWolfDE/mandelbrot-explorer"
)

// main is the entry point for the Mandelbrot web viewer.
// Every browser tab gets its own controller; rendering happens on the server.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		width      = flag.Int("width", mandel.DefaultWidth, "image width in pixels")
		height     = flag.Int("height", mandel.DefaultHeight, "image height in pixels")
		region     = flag.String("region", "default", "initial region: "+strings.Join(mandel.RegionNames(), ", "))
		iterations = flag.Int("iterations", mandel.DefaultMaxIterations, "iteration budget per pixel")
		contrast   = flag.Int("contrast", mandel.DefaultContrast, "grayscale falloff per iteration")
		preview    = flag.Bool("preview", true, "show a low resolution preview while zooming")
		minZoom    = flag.Float64("min-zoom", 0, "minimum magnification, 0 for unbounded")
		maxZoom    = flag.Float64("max-zoom", 0, "maximum magnification, 0 for unbounded")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	v, ok := mandel.LookupRegion(*region)
	if !ok {
		return fmt.Errorf("unknown region %q", *region)
	}
	opts := []mandel.Option{
		mandel.WithSize(*width, *height),
		mandel.WithViewport(v),
		mandel.WithMaxIterations(*iterations),
		mandel.WithContrast(*contrast),
	}
	if *preview {
		opts = append(opts, mandel.WithPreview(mandel.DefaultPreviewScale, mandel.DefaultPreviewDelay))
	}
	if o, ok := zoomLimitOption(*minZoom, *maxZoom); ok {
		opts = append(opts, o)
	}
	// Validate once up front so a bad flag fails at startup rather than per connection.
	check, err := mandel.NewController(mandel.ImageSinkFunc(func(mandel.Frame) error { return nil }), opts...)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	check.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpServer := webServer(ctx, *addr, opts)
	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// zoomLimitOption turns the -min-zoom/-max-zoom flags into a limits option.
// A zero flag leaves that side open. ok is false when both sides are open.
func zoomLimitOption(lo, hi float64) (o mandel.Option, ok bool) {
	if lo <= 0 && hi <= 0 {
		return nil, false
	}
	if lo <= 0 {
		lo = math.SmallestNonzeroFloat64
	}
	if hi <= 0 {
		hi = math.MaxFloat64
	}
	return mandel.WithZoomLimits(lo, hi), true
}
