// Package logger holds the process-wide loggers used by the app layer and
// the adapters. Both discard output until the CLI installs a real sink.
package logger

import (
	"io"
	"log"
)

// StdLogger is the subset of *log.Logger the project writes through.
type StdLogger interface {
	Print(v ...any)
	Printf(format string, v ...any)
	Println(v ...any)
}

var (
	// Logger receives lifecycle messages: dictionary builds, reloads and
	// server start/stop. Discarded by default.
	Logger StdLogger = log.New(io.Discard, "[ahotrie] ", log.LstdFlags)

	// DebugLogger receives per-request detail. It forwards to Logger unless
	// replaced.
	DebugLogger StdLogger = &debugLogger{}
)

type debugLogger struct{}

func (d *debugLogger) Print(v ...any)                 { Logger.Print(v...) }
func (d *debugLogger) Printf(format string, v ...any) { Logger.Printf(format, v...) }
func (d *debugLogger) Println(v ...any)               { Logger.Println(v...) }

// SetLogger replaces Logger.
func SetLogger(l StdLogger) {
	Logger = l
}

// SetDebugLogger replaces DebugLogger.
func SetDebugLogger(l StdLogger) {
	DebugLogger = l
}

// New returns a StdLogger writing to w with the project prefix, or a
// discarding one when w is nil.
func New(w io.Writer) StdLogger {
	if w == nil {
		w = io.Discard
	}
	return log.New(w, "[ahotrie] ", log.LstdFlags)
}
