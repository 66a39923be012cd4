package main

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"image/png"
	"io/fs"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	mandel "github.com/PaulWolfDE/mandelbrot-explorer"
)

//go:embed static
var staticFiles embed.FS

const writeTimeout = 10 * time.Second

// webServer creates the http server serving the viewer page and its websocket
// endpoint. Sessions end when ctx is cancelled.
func webServer(ctx context.Context, addr string, opts []mandel.Option) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           newMux(opts),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func newMux(opts []mandel.Option) *http.ServeMux {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(opts))
	mux.Handle("/", http.FileServer(http.FS(static)))
	return mux
}

// websocketHandler upgrades the connection and runs one viewer session on it.
func websocketHandler(opts []mandel.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		log.Printf("viewer connected: %s", r.RemoteAddr)
		err = newSession(r.Context(), c).serve(opts)
		switch {
		case err == nil, websocket.CloseStatus(err) == websocket.StatusNormalClosure,
			websocket.CloseStatus(err) == websocket.StatusGoingAway:
			log.Printf("viewer disconnected: %s", r.RemoteAddr)
			c.Close(websocket.StatusNormalClosure, "")
		case errors.Is(err, context.Canceled):
			c.Close(websocket.StatusGoingAway, "server shutting down")
		default:
			log.Printf("viewer %s: %v", r.RemoteAddr, err)
			c.Close(websocket.StatusInternalError, "session failed")
		}
	}
}

// frameInfo precedes every binary PNG frame.
type frameInfo struct {
	Type          string          `json:"type"`
	Generation    uint64          `json:"generation"`
	Preview       bool            `json:"preview"`
	Width         int             `json:"width"`
	Height        int             `json:"height"`
	Viewport      mandel.Viewport `json:"viewport"`
	Magnification float64         `json:"magnification"`
}

// clientMsg is sent by the page. Type is "zoom", "pan" or "region".
type clientMsg struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Dir    int     `json:"dir"`
	Region string  `json:"region,omitempty"`
}

func (m clientMsg) gesture() (mandel.Gesture, error) {
	switch m.Type {
	case "zoom":
		return mandel.ZoomGesture(m.X, m.Y, mandel.Direction(m.Dir)), nil
	case "pan":
		return mandel.PanGesture(m.X, m.Y), nil
	default:
		return mandel.Gesture{}, fmt.Errorf("unknown message type %q", m.Type)
	}
}

// session connects one websocket to one controller. It is the controller's
// image sink and gesture source.
type session struct {
	ctx      context.Context
	conn     *websocket.Conn
	ctrl     *mandel.Controller
	gestures chan mandel.Gesture
}

func newSession(ctx context.Context, conn *websocket.Conn) *session {
	return &session{
		ctx:      ctx,
		conn:     conn,
		gestures: make(chan mandel.Gesture, 16),
	}
}

// Show implements mandel.ImageSink.
func (s *session) Show(f mandel.Frame) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.Image); err != nil {
		return fmt.Errorf("png.Encode: %w", err)
	}

	ctx, cancel := context.WithTimeout(s.ctx, writeTimeout)
	defer cancel()

	size := f.Image.Bounds().Size()
	info := frameInfo{
		Type:          "frame",
		Generation:    f.Generation,
		Preview:       f.Preview,
		Width:         size.X,
		Height:        size.Y,
		Viewport:      f.Viewport,
		Magnification: s.ctrl.Config().Viewport.Width() / f.Viewport.Width(),
	}
	if err := wsjson.Write(ctx, s.conn, info); err != nil {
		return fmt.Errorf("write frame info: %w", err)
	}
	if err := s.conn.Write(ctx, websocket.MessageBinary, buf.Bytes()); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Gestures implements mandel.GestureSource.
func (s *session) Gestures() <-chan mandel.Gesture {
	return s.gestures
}

func (s *session) serve(opts []mandel.Option) error {
	ctrl, err := mandel.NewController(s, opts...)
	if err != nil {
		return err
	}
	s.ctrl = ctrl
	defer ctrl.Close()

	if err := ctrl.Refresh(s.ctx); err != nil {
		return fmt.Errorf("first frame: %w", err)
	}

	readErr := make(chan error, 1)
	go func() {
		readErr <- s.readLoop()
	}()

	if err := ctrl.Run(s.ctx, s); err != nil {
		return err
	}
	return <-readErr
}

// readLoop decodes client messages until the connection closes. Gestures go
// to the controller through the gestures channel, which is closed on return.
func (s *session) readLoop() error {
	defer close(s.gestures)
	for {
		var m clientMsg
		if err := wsjson.Read(s.ctx, s.conn, &m); err != nil {
			return err
		}

		if m.Type == "region" {
			v, ok := mandel.LookupRegion(m.Region)
			if !ok {
				log.Printf("unknown region %q", m.Region)
				continue
			}
			if err := s.ctrl.SetViewport(s.ctx, v); err != nil {
				return err
			}
			continue
		}

		g, err := m.gesture()
		if err != nil {
			log.Printf("bad message: %v", err)
			continue
		}
		select {
		case s.gestures <- g:
		case <-s.ctx.Done():
			return context.Cause(s.ctx)
		}
	}
}
