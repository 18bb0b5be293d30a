// Package logx configures the process-wide zerolog logger.
//
// Worktrunk writes all log output to stderr, never stdout: stdout is
// reserved for --format=json, shell init scripts, and (in stream mode)
// directives. Configure is called exactly once, at CLI startup, from
// the resolved -v/-vv flags.
package logx

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the process-wide structured logger. Safe for concurrent use.
var Logger zerolog.Logger

func init() {
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

// Verbosity mirrors the -v/-vv CLI flag count.
type Verbosity int

const (
	// Quiet logs only warnings and errors.
	Quiet Verbosity = iota
	// Verbose (-v) also logs info-level progress.
	Verbose
	// Debug (-vv) logs everything, including per-subprocess invocations.
	Debug
)

// Configure sets the global level and output writer. noColor forces a
// plain (non-ANSI) writer, matching NO_COLOR / non-TTY stderr.
func Configure(v Verbosity, noColor bool) {
	level := zerolog.WarnLevel
	switch v {
	case Verbose:
		level = zerolog.InfoLevel
	case Debug:
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}
	Logger = zerolog.New(writer).With().Timestamp().Logger()
}

// WithField returns a derived logger carrying one structured field.
func WithField(key string, value interface{}) zerolog.Logger {
	return Logger.With().Interface(key, value).Logger()
}

// WithFields returns a derived logger carrying several structured fields.
func WithFields(fields map[string]interface{}) zerolog.Logger {
	ctx := Logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}
