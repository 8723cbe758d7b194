package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Environment variables configuring the log file path and level.
const (
	envLogPath  = "ALX_STORAGE_LOG"
	envLogLevel = "ALX_STORAGE_LOG_LEVEL"
)

var (
	mu            sync.Mutex
	std           = newLogger(io.Discard)
	logFile       *os.File
	isInitialized bool
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// InitFromEnv initializes the logger using ALX_STORAGE_LOG or a default path.
func InitFromEnv() error {
	path := os.Getenv(envLogPath)
	if path == "" {
		// Default to the directory where the executable is located
		if exePath, err := os.Executable(); err == nil {
			path = filepath.Join(filepath.Dir(exePath), "alx-storage.log")
		} else {
			path = "./alx-storage.log"
		}
	}
	if err := Init(path); err != nil {
		return err
	}
	if lvl := os.Getenv(envLogLevel); lvl != "" {
		return SetLevel(lvl)
	}
	return nil
}

// Init initializes the logger to write to the provided file path.
// It creates parent directories if needed and opens the file in append mode.
// stdout is never used: the MCP server speaks its protocol there.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if isInitialized {
		return nil
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = f
	std.SetOutput(f)
	isInitialized = true
	return nil
}

// SetOutput redirects log output, e.g. to stderr for CLI use or a buffer in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

// SetLevel parses a logrus level name ("debug", "info", ...).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	std.SetLevel(lvl)
	return nil
}

// Close closes the underlying log file, if open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	isInitialized = false
	std.SetOutput(io.Discard)
	return err
}

// WithField returns an entry carrying one structured field.
func WithField(key string, value any) *logrus.Entry { return std.WithField(key, value) }

// Debugf logs verbose diagnostics.
func Debugf(format string, args ...any) { std.Debugf(format, args...) }

// Infof logs informational messages.
func Infof(format string, args ...any) { std.Infof(format, args...) }

// Warnf logs warnings.
func Warnf(format string, args ...any) { std.Warnf(format, args...) }

// Errorf logs errors.
func Errorf(format string, args ...any) { std.Errorf(format, args...) }

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
