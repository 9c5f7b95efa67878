// Package logging provides per-module loggers carried in a context.
package logging

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const loggerCacheKey contextKey = "logger"

// LoggerFactory retrieves a named logger for a given module.
type LoggerFactory func(module string) *zap.SugaredLogger

// Module returns a function that returns a logger for a given module when provided with a context.
func Module(module string) func(ctx context.Context) *zap.SugaredLogger {
	return func(ctx context.Context) *zap.SugaredLogger {
		if l := ctx.Value(loggerCacheKey); l != nil {
			if f, ok := l.(LoggerFactory); ok {
				return f(module)
			}
		}

		return NullLogger
	}
}

// WithLogger returns a derived context with associated logger.
func WithLogger(ctx context.Context, l LoggerFactory) context.Context {
	if l == nil {
		l = getNullLogger
	}

	return context.WithValue(ctx, loggerCacheKey, l)
}

// WithAdditionalLogger returns a context where all logging is emitted to the original logger and the provided one.
func WithAdditionalLogger(ctx context.Context, fact LoggerFactory) context.Context {
	v := ctx.Value(loggerCacheKey)
	if v == nil {
		return WithLogger(ctx, fact)
	}

	prev, ok := v.(LoggerFactory)
	if !ok {
		return WithLogger(ctx, fact)
	}

	return WithLogger(ctx, func(module string) *zap.SugaredLogger {
		return Broadcast(prev(module), fact(module))
	})
}
