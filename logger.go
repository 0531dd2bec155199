package isoslice

import (
	"log/slog"
	"sync/atomic"
)

var silent = slog.New(slog.DiscardHandler)

var current atomic.Pointer[slog.Logger]

// SetLogger routes isoslice diagnostics to l. Planes, kernels and the GPU
// accelerator all read the logger at the point of use, so a change applies
// to objects created earlier as well. A nil l silences output again, which is
// also the initial state.
//
// Levels:
//   - Debug: dispatch geometry, buffer sizes, per-pass segment counts
//   - Info: accelerator registration, kernel creation
//   - Warn: skipped passes (no closest surface, missing template), CPU fallback
//
// For example:
//
//	isoslice.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
//		&slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the logger set with SetLogger. It never returns nil.
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return silent
}
