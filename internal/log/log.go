// Package log configures the application logger. A TUI owns stdout, so all
// logging goes to a file under the user's state directory.
package log

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// Setup directs log output to <stateDir>/notepane.log at the given level.
// On any failure the logger silently discards output — a broken log file
// must never take the UI down.
func Setup(stateDir, level string) {
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(stateDir, "notepane.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	logger.SetOutput(f)
}

// WithField returns an entry with a single field attached.
func WithField(key string, value any) *logrus.Entry {
	return logger.WithField(key, value)
}

// Debugf logs at debug level.
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

// Infof logs at info level.
func Infof(format string, args ...any) { logger.Infof(format, args...) }

// Warnf logs at warning level.
func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

// Errorf logs at error level.
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
