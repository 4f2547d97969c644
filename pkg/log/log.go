// Package log provides structured logging for grove, backed by zerolog.
//
// Library packages fetch a named logger with GetLoggerWithName and emit
// structured key/value pairs; the process owner controls the level and the
// output writer. The default writer is os.Stderr at Info level.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Logger is the minimal structured logging surface used by grove packages.
// Fields are alternating key/value pairs, zerolog-style keys first.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	With(fields ...any) Logger
}

var (
	mu   sync.RWMutex
	root = zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
)

// SetOutput redirects all loggers to w. The CLI uses this to switch to a
// console writer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	root = root.Output(w)
}

// SetLevel sets the minimum level emitted by all loggers.
func SetLevel(level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	root = root.Level(level)
}

// ParseLevel maps a command-line level string to a zerolog level, defaulting
// to Info for anything unrecognized.
func ParseLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// GetLogger returns the default logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zlogger{zl: root}
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &zlogger{zl: root.With().Str(ComponentKey, name).Logger()}
}

type zlogger struct {
	zl zerolog.Logger
}

func (l *zlogger) Debug(msg string, fields ...any) { emit(l.zl.Debug(), msg, fields) }
func (l *zlogger) Info(msg string, fields ...any)  { emit(l.zl.Info(), msg, fields) }
func (l *zlogger) Warn(msg string, fields ...any)  { emit(l.zl.Warn(), msg, fields) }
func (l *zlogger) Error(msg string, fields ...any) { emit(l.zl.Error(), msg, fields) }

func (l *zlogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zlogger{zl: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case error:
			// Marshals structured error types via their zerolog hooks.
			ev = ev.AnErr(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
