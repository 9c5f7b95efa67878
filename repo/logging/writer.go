package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ToWriter returns LoggerFactory that uses given writer for log output (unadorned).
func ToWriter(w io.Writer) LoggerFactory {
	return ToWriterLevel(w, zapcore.DebugLevel)
}

// ToWriterLevel returns LoggerFactory that writes messages of the given level or above to w.
func ToWriterLevel(w io.Writer, level zapcore.Level) LoggerFactory {
	return func(module string) *zap.SugaredLogger {
		return zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
				MessageKey:     "m",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeDuration: zapcore.StringDurationEncoder,
			}),
			zapcore.AddSync(w),
			level,
		)).Sugar()
	}
}

// ToJSONWriter returns LoggerFactory that writes timestamped JSON records of all levels to w, tagged with the module name.
// The tag is a field of the core so it survives Broadcast.
func ToJSONWriter(w io.Writer) LoggerFactory {
	return func(module string) *zap.SugaredLogger {
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zapcore.EncoderConfig{
				TimeKey:        "t",
				LevelKey:       "l",
				MessageKey:     "m",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeDuration: zapcore.StringDurationEncoder,
			}),
			zapcore.AddSync(w),
			zapcore.DebugLevel,
		)

		return zap.New(core.With([]zapcore.Field{zap.String("mod", module)})).Sugar()
	}
}
