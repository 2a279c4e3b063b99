// Package logger builds the application zap logger and the structured fields
// shared across components.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service is attached to every entry as the "service" field.
const Service = "resume-scorer"

// New builds a logger writing to stderr, keeping stdout for reports.
// json switches the console encoder to JSON and debug lowers the level and
// enables stack traces on errors.
func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"
	stacktraceKey := ""

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
		stacktraceKey = "stacktrace"
	}

	cfg := zap.Config{
		Encoding:          encoding,
		Level:             zap.NewAtomicLevelAt(level),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !debug,
		InitialFields:     map[string]any{"service": Service},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			StacktraceKey:  stacktraceKey,
			EncodeDuration: zapcore.MillisDurationEncoder,
		},
	}

	return cfg.Build()
}
