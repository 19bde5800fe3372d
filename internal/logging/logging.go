// Package logging provides the zerolog logger used for progress and
// diagnostic messages. Logs go to stderr so that stdout stays reserved for
// command output.
//
// LOG_LEVEL selects the level (debug, info, warn, ...); LOG_FORMAT=json
// disables the console writer; NO_COLOR disables colors.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Nop discards everything.
var Nop = zerolog.Nop()

// New creates a logger writing to w at the given level.
// Terminals get human-readable console output unless LOG_FORMAT=json.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if isTerminal(w) && os.Getenv("LOG_FORMAT") != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Level returns the level from LOG_LEVEL, forced to debug when verbose is set.
func Level(verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if level, err := zerolog.ParseLevel(s); err == nil {
			return level
		}
	}
	return zerolog.WarnLevel
}

// isTerminal reports whether w is a terminal, including Cygwin and MSYS
// terminals on Windows.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
