// Package logging builds the zerolog loggers shared by the watermark binaries.
//
// Logs always go to stderr; stdout is reserved for the MCP protocol and for
// command output.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "WATERMARK_LOG_LEVEL"
	EnvFormat = "WATERMARK_LOG_FORMAT"
)

// Options selects the level and output format of a logger.
type Options struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string
	// Console switches from JSON lines to zerolog's human readable writer.
	Console bool
}

// FromEnv reads Options from WATERMARK_LOG_LEVEL and WATERMARK_LOG_FORMAT.
func FromEnv() Options {
	return Options{
		Level:   os.Getenv(EnvLevel),
		Console: strings.EqualFold(os.Getenv(EnvFormat), "console"),
	}
}

// ParseLevel maps a level name to a zerolog level. Unknown or empty names
// yield info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) zerolog.Logger {
	if opts.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
}

// Stderr returns a logger writing to os.Stderr.
func Stderr(opts Options) zerolog.Logger {
	return New(os.Stderr, opts)
}
