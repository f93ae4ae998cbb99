// Package logger provides structured logging for match execution.
// Every match and round event emitted by the engine should be traceable through this.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with context.
type Logger struct {
	z *zap.Logger
}

// NewLogger creates a new logger instance writing console lines to stderr.
func NewLogger() *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	z, err := cfg.Build()
	if err != nil {
		return NewNop()
	}
	return &Logger{z: z.Named("ipd")}
}

// New wraps an existing zap logger.
func New(z *zap.Logger) *Logger {
	if z == nil {
		return NewNop()
	}
	return &Logger{z: z}
}

// NewNop returns a logger that discards everything. Used by tests and as the
// engine default.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// With returns a child logger that adds fields to every line.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{z: l.z.With(fields...)}
}

// Info logs informational messages.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.z.Info(msg, fields...)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.z.Warn(msg, fields...)
}

// Error logs error messages.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.z.Error(msg, fields...)
}

// Event logs a match event against the actor that caused it.
func (l *Logger) Event(eventType string, actorID string, details string) {
	l.z.Info(details, zap.String("event", eventType), zap.String("actor", actorID))
}

// Sync flushes buffered lines.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
