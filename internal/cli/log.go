// Package cli implements the readstack command-line interface.
//
// The commands render stacked read figures, inspect the row packing and
// coverage of single files, serve figures over HTTP and manage the cache.
// The CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - render: Draw the annotation, read and coverage panels for a region
//   - layout: Print the row packing of one track
//   - coverage: Print the read depth over a region
//   - serve: Run the HTTP figure server for the configured tracks
//   - cache: Clear the cache or print its location
//
// # Logging
//
// Log lines go to stderr; figures, tables and depth dumps go to stdout, so
// the output of layout --json and coverage --dump can be piped. --verbose
// (-v) switches to debug level. The root command attaches its logger to the
// command context.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat prints hundredths of a second ("14:32:01.45").
const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// progress times one stage of a command, such as packing a track.
type progress struct {
	logger *log.Logger
	stage  string
	start  time.Time
}

// startProgress logs the stage at debug level and starts its clock.
func startProgress(l *log.Logger, stage string) *progress {
	l.Debug("start", "stage", stage)
	return &progress{logger: l, stage: stage, start: time.Now()}
}

// done logs the stage at info level with the elapsed time ("took") followed
// by keyvals.
func (p *progress) done(keyvals ...any) {
	kv := append([]any{"took", time.Since(p.start).Round(time.Millisecond)}, keyvals...)
	p.logger.Info(p.stage, kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() for contexts that did not pass through it.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
