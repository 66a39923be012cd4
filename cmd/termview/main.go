// termview is a terminal Mandelbrot viewer. Each character cell shows two
// pixels stacked vertically. Scroll to zoom at the mouse cursor, drag to pan,
// +/- zoom at the centre, arrow keys pan, r resets, q quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	mandel "github.com/PaulWolfDE/mandelbrot-explorer"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	var (
		region     = flag.String("region", "default", "initial region: "+strings.Join(mandel.RegionNames(), ", "))
		iterations = flag.Int("iterations", mandel.DefaultMaxIterations, "iteration budget per pixel")
		contrast   = flag.Int("contrast", mandel.DefaultContrast, "grayscale falloff per iteration")
		zoomFactor = flag.Float64("zoom-factor", mandel.DefaultZoomFactor, "extent ratio of one zoom step")
		logFile    = flag.String("log", "", "write debug log to this file")
	)
	flag.Parse()

	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		mandel.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	start, ok := mandel.LookupRegion(*region)
	if !ok {
		return fmt.Errorf("unknown region %q", *region)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Frames are rendered for the initial terminal size and scaled to fit
	// after a resize.
	w, h := screen.Size()
	v := newViewer(ctx, screen, start)
	ctrl, err := mandel.NewController(v,
		mandel.WithSize(max(w, 1), max(2*(h-1), 1)),
		mandel.WithViewport(start),
		mandel.WithMaxIterations(*iterations),
		mandel.WithContrast(*contrast),
		mandel.WithZoomFactor(*zoomFactor),
		mandel.WithPreview(mandel.DefaultPreviewScale, mandel.DefaultPreviewDelay),
	)
	if err != nil {
		return err
	}
	defer ctrl.Close()
	v.ctrl = ctrl

	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- ctrl.Run(ctx, v)
	}()

	for {
		if quit := v.handle(screen.PollEvent()); quit {
			break
		}
	}
	v.stop()
	return <-runErr
}
