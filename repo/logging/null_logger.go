package logging

import (
	"go.uber.org/zap"
)

// NullLogger represents a singleton logger that discards all output.
var NullLogger = zap.NewNop().Sugar()

func getNullLogger(module string) *zap.SugaredLogger {
	return NullLogger
}
