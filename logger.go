package pixels

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/pixels/internal/scaler"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for pixels and the built-in scaler.
// By default, pixels produces no log output. Pass nil to restore the
// silent default. SetLogger is safe for concurrent use.
//
// Log levels used by pixels:
//   - [slog.LevelDebug]: surface reconfiguration, pipeline and texture details
//   - [slog.LevelInfo]: lifecycle events (adapter selected, device shared)
//   - [slog.LevelWarn]: dropped frames and resource release problems
//
// Example:
//
//	pixels.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	scaler.SetLogger(l)
}

// Logger returns the current logger used by pixels.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
