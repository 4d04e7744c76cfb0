// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/thenoetrevino/pasosync/internal/config"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

var logFile *os.File

// Init initializes the logging system from cfg. File "-" logs to stderr;
// anything else is opened in append mode, creating parent directories.
// Uses text format for human readability.
func Init(cfg config.LoggingConfig) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" && cfg.File != "-" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return err
		}
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		Close()
		logFile = file
		out = file
	}

	Logger = New(out, level)
	slog.SetDefault(Logger)

	// Redirect standard log package output to the same sink
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)

	return nil
}

// New builds a text logger at level writing to w
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps debug/info/warn/error to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Close releases the log file, if one is open
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
