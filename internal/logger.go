package internal

import (
	"io"
	"os"
	"sync"

	"pkt.systems/pslog"
)

var (
	logMu     sync.RWMutex
	logOutput io.Writer = os.Stderr
	verbose   bool
	logger    = newLogger(os.Stderr, false)
)

func newLogger(w io.Writer, debug bool) pslog.Logger {
	level := pslog.InfoLevel
	if debug {
		level = pslog.DebugLevel
	}
	return pslog.NewWithOptions(w, pslog.Options{
		Mode:     pslog.ModeConsole,
		MinLevel: level,
	})
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(enabled bool) {
	logMu.Lock()
	defer logMu.Unlock()
	verbose = enabled
	logger = newLogger(logOutput, enabled)
}

// SetLogOutput redirects log output, mostly for tests
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logOutput = w
	logger = newLogger(w, verbose)
}

// SetLogger replaces the package logger entirely
func SetLogger(l pslog.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	logger = l
}

// Logger returns the current package logger
func Logger() pslog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// LogError logs an error message with structured fields
func LogError(msg string, keyvals ...any) {
	Logger().Error(msg, keyvals...)
}

// LogWarn logs a warning message with structured fields
func LogWarn(msg string, keyvals ...any) {
	Logger().Warn(msg, keyvals...)
}

// LogInfo logs an info message with structured fields
func LogInfo(msg string, keyvals ...any) {
	Logger().Info(msg, keyvals...)
}

// LogDebug logs a debug message with structured fields
func LogDebug(msg string, keyvals ...any) {
	Logger().Debug(msg, keyvals...)
}
