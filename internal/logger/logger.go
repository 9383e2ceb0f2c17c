// Package logger constructs the application's structured zap logger.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger used across the application.
type Logger struct {
	// Log is the underlying zap logger.
	Log *zap.Logger
}

// New returns a Logger with a no-op backend; call Init to replace it
// with a real one.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production zap logger at the given level ("Debug",
// "Info", "Warn", "Error") and installs it on the Logger.
func (l *Logger) Init(level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	l.Log = log
	return nil
}
