// Package cli implements the pangraph command-line interface.
//
// The commands load pangraph JSON files, marginalize them to strain subsets,
// verify reconstructed genomes, and export or render the results. The CLI is
// built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - marginalize: Restrict a graph to a strain subset and merge blocks
//   - check: Verify a graph against reference genomes or another graph
//   - export: Write reconstructed genomes or block consensus as FASTA
//   - render: Draw the block graph as DOT or SVG
//   - info: Summarize a graph
//   - serve: Run the HTTP API
//   - cache: Manage the result cache
//
// # Configuration
//
// Defaults come from an optional TOML file, see [Config]. Flags override it.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// runIDLen is the number of run ID characters shown in log lines.
const runIDLen = 8

// newLogger returns a logger writing timestamped lines ("14:32:01.45") to w
// at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time, e.g.
//
//	marginalized graph strains=2 blocks_in=40 blocks_out=7 duration=12ms
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "duration", elapsed)...)
}

type loggerKey struct{}

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// withRun scopes the context logger to one marginalization run, tagging
// every line with the first characters of runID.
func withRun(ctx context.Context, runID string) (context.Context, *log.Logger) {
	short := runID
	if len(short) > runIDLen {
		short = short[:runIDLen]
	}
	l := loggerFromContext(ctx).With("run", short)
	return withLogger(ctx, l), l
}

// loggerFromContext returns the logger attached to ctx, or log.Default.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
