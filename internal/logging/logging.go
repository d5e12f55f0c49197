// Package logging builds the process slog.Logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"marketdash/internal/config"
)

// New returns a logger for cfg. The returned closer flushes the rotating
// file, if any; it is safe to call when logging goes to stdout only.
func New(cfg config.Log) (*slog.Logger, io.Closer, error) {
	return NewTo(cfg, os.Stdout)
}

// NewTo is New with console output sent to console instead of stdout.
func NewTo(cfg config.Log, console io.Writer) (*slog.Logger, io.Closer, error) {
	out, closer, err := writer(cfg, console)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(handler(cfg, out)), closer, nil
}

func writer(cfg config.Log, stdout io.Writer) (io.Writer, io.Closer, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return stdout, nopCloser{}, nil
	}
	if cfg.FilePath == "" {
		return nil, nil, fmt.Errorf("log output %q needs a file_path", cfg.Output)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	if output == "file" {
		return file, file, nil
	}
	return io.MultiWriter(stdout, file), file, nil
}

func handler(cfg config.Log, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
