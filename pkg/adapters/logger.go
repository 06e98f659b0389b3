// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of media-mgmt-cli.
//
// media-mgmt-cli is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package adapters provides the pluggable logging interface used across the tool.
package adapters

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// DebugLevel for detailed debugging information.
	DebugLevel LogLevel = iota
	// InfoLevel for general informational messages.
	InfoLevel
	// WarnLevel for warning messages.
	WarnLevel
	// ErrorLevel for error messages.
	ErrorLevel
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel converts a level name such as "debug" or "WARN" into a LogLevel.
// Unrecognized names fall back to InfoLevel.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Field represents a structured logging field (key-value pair).
type Field struct {
	Key   string
	Value any
}

// Logger defines the interface for pluggable logging implementations.
type Logger interface {
	// Debug logs a debug-level message with optional fields.
	Debug(ctx context.Context, msg string, fields ...Field)

	// Info logs an info-level message with optional fields.
	Info(ctx context.Context, msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields.
	Warn(ctx context.Context, msg string, fields ...Field)

	// Error logs an error-level message with optional fields.
	Error(ctx context.Context, msg string, fields ...Field)

	// WithFields returns a new Logger with the given fields added to all log entries.
	WithFields(fields ...Field) Logger

	// WithContext returns a new Logger with the given context.
	WithContext(ctx context.Context) Logger

	// SetLevel sets the minimum log level that will be output.
	SetLevel(level LogLevel)

	// GetLevel returns the current log level.
	GetLevel() LogLevel
}

type loggerKey struct{}

// ContextWithLogger stores logger on ctx so deeper calls can pick up request
// scoped fields such as a retrieval ID.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored on ctx, or fallback when there is none.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
			return l
		}
	}
	if fallback == nil {
		return NewNoOpLogger()
	}
	return fallback
}

// ZerologLogger writes JSON log lines through zerolog.
type ZerologLogger struct {
	logger zerolog.Logger
	level  LogLevel
	ctx    context.Context
}

// NewZerologLogger creates a logger writing JSON lines to w.
func NewZerologLogger(w io.Writer, level LogLevel) *ZerologLogger {
	zl := zerolog.New(w).With().Timestamp().Logger().Level(level.zerolog())
	return &ZerologLogger{logger: zl, level: level}
}

// NewFileLogger opens (or creates) path in append mode and returns a logger
// writing to it along with the file so the caller can close it.
func NewFileLogger(path string, level LogLevel) (*ZerologLogger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, nil, err
	}
	return NewZerologLogger(f, level), f, nil
}

// Debug logs a debug-level message.
func (l *ZerologLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(l.logger.Debug(), msg, fields)
}

// Info logs an info-level message.
func (l *ZerologLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(l.logger.Info(), msg, fields)
}

// Warn logs a warning-level message.
func (l *ZerologLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(l.logger.Warn(), msg, fields)
}

// Error logs an error-level message.
func (l *ZerologLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(l.logger.Error(), msg, fields)
}

func (l *ZerologLogger) write(event *zerolog.Event, msg string, fields []Field) {
	if event == nil {
		return
	}
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			event = event.AnErr(f.Key, err)
			continue
		}
		event = event.Interface(f.Key, f.Value)
	}
	event.Msg(msg)
}

// WithFields returns a new logger with additional fields.
func (l *ZerologLogger) WithFields(fields ...Field) Logger {
	zctx := l.logger.With()
	for _, f := range fields {
		zctx = zctx.Interface(f.Key, f.Value)
	}
	return &ZerologLogger{logger: zctx.Logger(), level: l.level, ctx: l.ctx}
}

// WithContext returns a new logger with the given context.
func (l *ZerologLogger) WithContext(ctx context.Context) Logger {
	return &ZerologLogger{logger: l.logger, level: l.level, ctx: ctx}
}

// SetLevel sets the minimum log level.
func (l *ZerologLogger) SetLevel(level LogLevel) {
	l.level = level
	l.logger = l.logger.Level(level.zerolog())
}

// GetLevel returns the current log level.
func (l *ZerologLogger) GetLevel() LogLevel {
	return l.level
}

// NoOpLogger is a logger that discards all log messages.
// Useful for testing or when logging is not desired.
type NoOpLogger struct {
	level LogLevel
}

// NewNoOpLogger creates a new no-op logger.
func NewNoOpLogger() Logger {
	return &NoOpLogger{level: ErrorLevel}
}

func (l *NoOpLogger) Debug(ctx context.Context, msg string, fields ...Field) {}
func (l *NoOpLogger) Info(ctx context.Context, msg string, fields ...Field)  {}
func (l *NoOpLogger) Warn(ctx context.Context, msg string, fields ...Field)  {}
func (l *NoOpLogger) Error(ctx context.Context, msg string, fields ...Field) {}
func (l *NoOpLogger) WithFields(fields ...Field) Logger                      { return l }
func (l *NoOpLogger) WithContext(ctx context.Context) Logger                 { return l }
func (l *NoOpLogger) SetLevel(level LogLevel)                                { l.level = level }
func (l *NoOpLogger) GetLevel() LogLevel                                     { return l.level }
