// Package testlogging implements logger that writes to testing.T log.
package testlogging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/syphon-archive/syphon/repo/logging"
)

type testingT interface {
	Helper()
	Errorf(msg string, args ...any)
	Fatalf(msg string, args ...any)
	Logf(msg string, args ...any)
}

// Level specifies log level.
type Level = zapcore.Level

// log levels.
const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// Context returns a context with attached logger that emits all log entries to go testing.T log output.
func Context(t testingT) context.Context {
	return ContextWithLevel(t, LevelDebug)
}

// ContextWithLevel returns a context with attached logger that emits all log entries with given log level or above.
func ContextWithLevel(t testingT, level Level) context.Context {
	return logging.WithLogger(context.Background(), func(module string) *zap.SugaredLogger {
		return PrintfLevel(t.Logf, "["+module+"] ", level)
	})
}
