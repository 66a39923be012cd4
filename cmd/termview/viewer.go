package main

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"

	mandel "github.com/PaulWolfDE/mandelbrot-explorer"
)

const (
	upperHalf = '▀'
	panStep   = 0.1
)

// viewer presents frames on a tcell screen and turns terminal input into
// gestures. The bottom row is a status line.
type viewer struct {
	ctx    context.Context
	screen tcell.Screen
	ctrl   *mandel.Controller
	home   mandel.Viewport

	gestures chan mandel.Gesture
	stopOnce sync.Once

	m        sync.Mutex
	frame    mandel.Frame
	mouse    image.Point
	dragFrom *image.Point
}

func newViewer(ctx context.Context, screen tcell.Screen, home mandel.Viewport) *viewer {
	return &viewer{
		ctx:      ctx,
		screen:   screen,
		home:     home,
		gestures: make(chan mandel.Gesture, 32),
	}
}

// Gestures implements mandel.GestureSource.
func (v *viewer) Gestures() <-chan mandel.Gesture {
	return v.gestures
}

func (v *viewer) stop() {
	v.stopOnce.Do(func() { close(v.gestures) })
}

// Show implements mandel.ImageSink.
func (v *viewer) Show(f mandel.Frame) error {
	v.m.Lock()
	defer v.m.Unlock()
	v.frame = f
	v.draw()
	return nil
}

// imageArea is the pixel grid the screen can show: one pixel per column and
// two per row, excluding the status line.
func imageArea(w, h int) (pw, ph int) {
	return w, 2 * max(h-1, 0)
}

// draw repaints the image and the status line. Callers hold v.m.
func (v *viewer) draw() {
	w, h := v.screen.Size()
	pw, ph := imageArea(w, h)
	if pw > 0 && ph > 0 && v.frame.Image != nil {
		img := fitImage(v.frame.Image, pw, ph)
		for cy := 0; cy < ph/2; cy++ {
			for cx := 0; cx < pw; cx++ {
				top := img.RGBAAt(cx, 2*cy)
				bottom := img.RGBAAt(cx, 2*cy+1)
				style := tcell.StyleDefault.
					Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
					Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
				v.screen.SetContent(cx, cy, upperHalf, nil, style)
			}
		}
	}
	v.drawStatus(w, h)
	v.screen.Show()
}

func (v *viewer) drawStatus(w, h int) {
	if h < 1 {
		return
	}
	line := v.status(w, h)
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range line {
		if x >= w {
			break
		}
		v.screen.SetContent(x, h-1, r, nil, style)
		x++
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, h-1, ' ', nil, style)
	}
}

func (v *viewer) status(w, h int) string {
	vp := v.frame.Viewport
	if v.frame.Image == nil {
		return " rendering…"
	}
	fx, fy := cursorFraction(v.mouse.X, v.mouse.Y, w, h)
	s := fmt.Sprintf(" %v  zoom %.4gx", vp.PointAt(fx, fy), v.home.Width()/vp.Width())
	if v.frame.Preview {
		s += "  (preview)"
	}
	return s
}

// fitImage returns img scaled to w×h, or img itself if it already fits.
func fitImage(img *image.RGBA, w, h int) *image.RGBA {
	if b := img.Bounds(); b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// cursorFraction maps a cell to a fraction of the image area, clamped to [0,1].
func cursorFraction(x, y, w, h int) (fx, fy float64) {
	rows := max(h-1, 1)
	fx = float64(x) / float64(max(w, 1))
	fy = float64(y) / float64(rows)
	return min(max(fx, 0), 1), min(max(fy, 0), 1)
}

// handle processes one terminal event and reports whether to quit.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventResize:
		v.screen.Sync()
		v.m.Lock()
		v.draw()
		v.m.Unlock()
	case nil:
		// PollEvent returns nil once the screen is finalized.
		return true
	}
	return false
}

func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.send(mandel.PanGesture(0, panStep))
	case tcell.KeyDown:
		v.send(mandel.PanGesture(0, -panStep))
	case tcell.KeyLeft:
		v.send(mandel.PanGesture(panStep, 0))
	case tcell.KeyRight:
		v.send(mandel.PanGesture(-panStep, 0))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case '+', '=':
			v.send(mandel.ZoomGesture(0.5, 0.5, mandel.ZoomIn))
		case '-':
			v.send(mandel.ZoomGesture(0.5, 0.5, mandel.ZoomOut))
		case 'r':
			if v.ctrl == nil {
				break
			}
			if err := v.ctrl.SetViewport(v.ctx, v.home); err != nil {
				mandel.Logger().Warn("reset failed", "err", err)
			}
		}
	}
	return false
}

func (v *viewer) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	w, h := v.screen.Size()
	fx, fy := cursorFraction(x, y, w, h)

	v.m.Lock()
	v.mouse = image.Pt(x, y)
	from := v.dragFrom
	switch btn := ev.Buttons(); {
	case btn&tcell.WheelUp != 0:
		v.send(mandel.ZoomGesture(fx, fy, mandel.ZoomIn))
	case btn&tcell.WheelDown != 0:
		v.send(mandel.ZoomGesture(fx, fy, mandel.ZoomOut))
	case btn&tcell.Button1 != 0:
		if from == nil {
			p := image.Pt(x, y)
			v.dragFrom = &p
		}
	case btn == tcell.ButtonNone && from != nil:
		v.dragFrom = nil
		ox, oy := cursorFraction(from.X, from.Y, w, h)
		v.send(mandel.PanGesture(fx-ox, fy-oy))
	}
	v.drawStatus(w, h)
	v.screen.Show()
	v.m.Unlock()
}

// send queues a gesture, dropping it if the controller is far behind.
func (v *viewer) send(g mandel.Gesture) {
	select {
	case v.gestures <- g:
	default:
		mandel.Logger().Warn("gesture dropped, queue full", "kind", g.Kind)
	}
}
