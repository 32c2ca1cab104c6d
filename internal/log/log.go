// Package log provides category-tagged logging for cueboard.
//
// The TUI owns stdout, so log output goes to a file (or is discarded until
// Init is called). Call sites tag each record with the subsystem it came
// from so a single log file stays greppable.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
)

// Category identifies the subsystem emitting a log record.
type Category string

const (
	CatApp     Category = "app"
	CatBoard   Category = "board"
	CatAudio   Category = "audio"
	CatLibrary Category = "library"
	CatUI      Category = "ui"
	CatConfig  Category = "config"
)

var logger = charmlog.New(io.Discard)

// Init routes log output to the given file, creating parent directories as
// needed. Returns the cleanup func that closes the file.
func Init(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	logger = charmlog.NewWithOptions(f, charmlog.Options{
		ReportTimestamp: true,
	})
	if os.Getenv("CUEBOARD_DEBUG") != "" {
		logger.SetLevel(charmlog.DebugLevel)
	}

	return func() { _ = f.Close() }, nil
}

// SetOutput redirects log output. Used by tests.
func SetOutput(w io.Writer) {
	logger = charmlog.New(w)
	logger.SetLevel(charmlog.DebugLevel)
}

// Debug logs a debug-level record tagged with a category.
func Debug(cat Category, msg string, keyvals ...any) {
	logger.Debug(msg, append([]any{"cat", string(cat)}, keyvals...)...)
}

// Info logs an info-level record tagged with a category.
func Info(cat Category, msg string, keyvals ...any) {
	logger.Info(msg, append([]any{"cat", string(cat)}, keyvals...)...)
}

// Warn logs a warn-level record tagged with a category.
func Warn(cat Category, msg string, keyvals ...any) {
	logger.Warn(msg, append([]any{"cat", string(cat)}, keyvals...)...)
}

// Error logs an error-level record tagged with a category.
func Error(cat Category, msg string, keyvals ...any) {
	logger.Error(msg, append([]any{"cat", string(cat)}, keyvals...)...)
}

// ErrorErr logs an error-level record with the error attached.
func ErrorErr(cat Category, msg string, err error, keyvals ...any) {
	logger.Error(msg, append([]any{"cat", string(cat), "err", err}, keyvals...)...)
}
