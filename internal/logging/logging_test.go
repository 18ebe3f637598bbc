package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
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
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_ConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "warn", Console: &buf})
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	logger.Info("hidden")
	logger.Warn("shown", "attempt", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "attempt=2")
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "error", Verbose: true, Console: &buf})
	require.NoError(t, err)

	logger.Debug("details")
	assert.Contains(t, buf.String(), "msg=details")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(Options{Level: "chatty"})
	require.Error(t, err)
}

func TestNew_FileLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	logger, closeFn, err := New(Options{Console: &console, Dir: dir})
	require.NoError(t, err)

	logger.With("request_id", "abc").Debug("completion response", "raw", "SELECT 1")
	logger.Info("question received", "question", "What is the total revenue?")
	require.NoError(t, closeFn())

	assert.NotContains(t, console.String(), "completion response", "console stays at info")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "DEBUG", first["level"])
	assert.Equal(t, "completion response", first["msg"])
	assert.Equal(t, "abc", first["request_id"])
	assert.Equal(t, "SELECT 1", first["raw"])
}

func TestNew_MasksSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Console: &buf})
	require.NoError(t, err)

	logger.Error("completion failed",
		"error", errors.New("Incorrect API key provided: sk-proj-abcdefgh1234"),
		"dsn", "postgres://app:hunter2@db:5432/royalties",
	)

	out := buf.String()
	assert.NotContains(t, out, "abcdefgh1234")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "sk-***")
}
