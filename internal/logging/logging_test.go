package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"marketdash/internal/config"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestHandler_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(handler(config.Log{Level: "warn", Format: "json"}, &buf))

	log.Info("dropped")
	log.Warn("upstream failed", "provider", "yahoo")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "upstream failed", rec["msg"])
	require.Equal(t, "yahoo", rec["provider"])
	require.NotContains(t, buf.String(), "dropped")
}

func TestWriter_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	log, closer, err := New(config.Log{Level: "info", Format: "text", Output: "file", FilePath: path, MaxSize: 1})
	require.NoError(t, err)

	log.Info("hello", "k", "v")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "msg=hello")
	require.Contains(t, string(b), "k=v")
}

func TestWriter_FileOutputNeedsPath(t *testing.T) {
	_, _, err := New(config.Log{Output: "both"})
	require.Error(t, err)
}

func TestNewTo_Console(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := NewTo(config.Log{Format: "text"}, &buf)
	require.NoError(t, err)

	log.Info("to console")
	require.Contains(t, buf.String(), "msg=\"to console\"")
}
