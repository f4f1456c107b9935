// Package logging builds the slog logger used by borca.
// Records go to stderr as text so they never mix with command output on stdout.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/borca-dev/borca/internal/domain"
)

// Verbosity levels accepted on the command line.
const (
	VerbosityQuiet   = 0 // errors only
	VerbosityNormal  = 1 // progress messages
	VerbosityVerbose = 2 // cache decisions and digests
)

// New creates a text logger writing to w at the given minimum level.
// A nil writer yields a logger that discards everything.
func New(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: dropTime,
	}))
}

// LevelFromVerbosity maps a CLI verbosity to a slog level.
func LevelFromVerbosity(verbosity int) (slog.Level, error) {
	switch verbosity {
	case VerbosityQuiet:
		return slog.LevelError, nil
	case VerbosityNormal:
		return slog.LevelInfo, nil
	case VerbosityVerbose:
		return slog.LevelDebug, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %d (must be 0, 1 or 2)", domain.ErrInvalidVerbosity, verbosity)
	}
}

// ParseLevel parses a log level string into slog.Level.
// Used for the BORCA_LOG_LEVEL environment override.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// dropTime removes the timestamp from top-level records; build output is
// read interactively and the time adds noise.
func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
