package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borca-dev/borca/internal/domain"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"unknown", slog.LevelInfo}, // default
		{"", slog.LevelInfo},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLevel(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		expected  slog.Level
		wantErr   bool
	}{
		{VerbosityQuiet, slog.LevelError, false},
		{VerbosityNormal, slog.LevelInfo, false},
		{VerbosityVerbose, slog.LevelDebug, false},
		{-1, slog.LevelInfo, true},
		{3, slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := LevelFromVerbosity(tt.verbosity)
		if tt.wantErr {
			assert.ErrorIs(t, err, domain.ErrInvalidVerbosity, "verbosity %d", tt.verbosity)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "verbosity %d", tt.verbosity)
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)

	logger.Debug("hidden detail")
	logger.Info("running task", "task", "lint")

	out := buf.String()
	assert.NotContains(t, out, "hidden detail")
	assert.Contains(t, out, "running task")
	assert.Contains(t, out, "task=lint")
	assert.NotContains(t, out, "time=")
}

func TestNew_QuietShowsErrorsOnly(t *testing.T) {
	var buf bytes.Buffer
	level, err := LevelFromVerbosity(VerbosityQuiet)
	require.NoError(t, err)
	logger := New(&buf, level)

	logger.Warn("cache unreadable")
	logger.Error("command failed")

	assert.NotContains(t, buf.String(), "cache unreadable")
	assert.Contains(t, buf.String(), "command failed")
}

func TestNew_NilWriter(t *testing.T) {
	logger := New(nil, slog.LevelDebug)

	assert.NotPanics(t, func() { logger.Info("discarded") })
}
