package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseLevel(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseLevel(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseLevel(%q)", tt.in)
	}
}

func TestNewWriter(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := NewWriter(&buf, Config{Level: "warn", Format: "json"})
		require.NoError(t, err)
		log.Info("dropped")
		log.Warn("kept", slog.String("zone", "Europe/Berlin"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "kept", rec["msg"])
		assert.Equal(t, "WARN", rec["level"])
		assert.Equal(t, "Europe/Berlin", rec["zone"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := NewWriter(&buf, Config{Level: "debug"})
		require.NoError(t, err)
		log.Debug("cache miss", slog.String("zone", "UTC"))
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "zone=UTC")
	})

	t.Run("errors", func(t *testing.T) {
		_, err := NewWriter(&bytes.Buffer{}, Config{Format: "xml"})
		assert.ErrorContains(t, err, "unknown log format")
		_, err = NewWriter(&bytes.Buffer{}, Config{Level: "loud"})
		assert.ErrorContains(t, err, "unknown log level")
	})
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tzresolve.log")
	log, closeLog, err := New(Config{Level: "info", Format: "text", Output: path})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, closeLog())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "msg=hello")

	_, _, err = New(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	log := Discard().With(slog.String("component", "test")).WithGroup("g")
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
	log.Error("nothing")
}
