// Package cli implements the pvmviz command-line interface.
//
// The commands compile process definitions into diagrams, overlay token
// state, and serve or cache the rendered artifacts. The CLI is built on
// cobra and logs through charmbracelet/log; --verbose (-v) switches every
// command to debug level.
//
// # Commands
//
//   - render: Compile a process (and optional tokens) to DOT, SVG or PNG
//   - styles: Dump, show and seed style records
//   - serve: Render over HTTP
//   - watch: Follow token progress in a live terminal table
//   - cache: Manage the rendered artifact cache
//
// # Configuration
//
// Settings are read from $XDG_CONFIG_HOME/pvmviz/config.toml, then the
// PVMVIZ_* environment variables, then command flags; later sources win.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to milliseconds, for example
// "Rendered review (41ms)".
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
