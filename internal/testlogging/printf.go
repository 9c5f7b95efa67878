package testlogging

import (
	"bytes"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/syphon-archive/syphon/repo/logging"
)

// Printf returns a logger that sends each message to a printf-style function.
func Printf(printf func(msg string, args ...any), prefix string) *zap.SugaredLogger {
	return PrintfLevel(printf, prefix, LevelDebug)
}

// PrintfLevel is like Printf but drops messages below the given level.
func PrintfLevel(printf func(msg string, args ...any), prefix string, level Level) *zap.SugaredLogger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:  "M",
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeLevel: zapcore.CapitalLevelEncoder,
	})

	return zap.New(zapcore.NewCore(enc, printfWriter{printf, prefix}, level)).Sugar()
}

// PrintfFactory returns LoggerFactory that uses given printf-style function to print log output.
func PrintfFactory(printf func(msg string, args ...any)) logging.LoggerFactory {
	return func(module string) *zap.SugaredLogger {
		return Printf(printf, "["+module+"] ")
	}
}

type printfWriter struct {
	printf func(msg string, args ...any)
	prefix string
}

func (w printfWriter) Write(p []byte) (int, error) {
	w.printf("%s%s", w.prefix, bytes.TrimRight(p, "\n"))

	return len(p), nil
}

func (w printfWriter) Sync() error {
	return nil
}
