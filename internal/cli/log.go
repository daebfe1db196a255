// Package cli implements the gridboard command-line interface.
//
// The commands operate on layout files (JSON, TOML or YAML) and on a live
// board served over HTTP. Commands are cobra commands hung off [CLI]; output
// is styled with lipgloss and logging goes through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - compact: Reflow a layout file in list or compact mode
//   - validate: Report overlapping, out-of-bounds and duplicate widgets
//   - cycle: Simulate auto-cycle rotation over a preset file
//   - serve: Run the dashboard server with a persistent preference store
//   - tui: Edit a layout interactively
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so library packages stay silent unless a
// command hands them one.
//
// # Example
//
//	import "github.com/matzehuels/gridboard/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger on w that prints "15:04:05.00" timestamps and
// drops messages below level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a step took, e.g. "Opened redis store (212ms)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx. Commands receive it through
// cmd.Context() once the root's PersistentPreRunE has run.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
