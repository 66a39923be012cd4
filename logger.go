package mandel

import (
	"io"
	"log/slog"
	"math"
	"sync/atomic"
)

var (
	logger atomic.Pointer[slog.Logger]

	// discard has a level above any real one, so Enabled is always false.
	discard = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt32)}))
)

// SetLogger sets the logger for render and controller events; nil silences
// them again. Debug carries render timings and dropped frames, Info viewport
// changes, Warn rejected gestures.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Logger returns the logger set with SetLogger, or a silent one.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return discard
}
