// Package logging constructs the application logger. There is no package
// level logger on purpose: the logger is created once by the entry point and
// passed to every component that needs it.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Flags holds the CLI flags that affect logging behavior.
type Flags struct {
	Verbose bool
	Quiet   bool
	JSON    bool
}

// New creates a logger writing to w at InfoLevel.
func New(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: true,
	})
}

// Configure adjusts the logger based on CLI flags. Quiet takes precedence
// over verbose when both are set.
func Configure(l *log.Logger, f Flags) {
	switch {
	case f.Quiet:
		l.SetLevel(log.ErrorLevel)
	case f.Verbose:
		l.SetLevel(log.DebugLevel)
	default:
		l.SetLevel(log.InfoLevel)
	}

	if f.JSON {
		l.SetFormatter(log.JSONFormatter)
	}
}
