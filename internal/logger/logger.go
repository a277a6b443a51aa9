// Package logger builds the zap logger used across the application.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FieldApp and FieldVersion are attached to every entry written by a logger from New.
const (
	FieldApp     = "app"
	FieldVersion = "version"
)

// Options configure New.
type Options struct {
	JSON  bool
	Debug bool
	// Output is a zap sink such as "stderr" or a file path. Empty means stderr,
	// so stdout stays free for reports piped to other tools.
	Output  string
	App     string
	Version string
}

func New(opts Options) (*zap.Logger, error) {
	output := opts.Output
	if output == "" {
		output = "stderr"
	}

	cfg := zap.Config{
		Encoding:          encoding(opts.JSON),
		Level:             zap.NewAtomicLevelAt(level(opts.Debug)),
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !opts.Debug,
		EncoderConfig:     encoderConfig(),
		InitialFields:     initialFields(opts),
	}

	return cfg.Build()
}

func encoding(json bool) string {
	if json {
		return "json"
	}
	return "console"
}

func level(debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey: "step",

		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.RFC3339TimeEncoder,

		CallerKey:    "caller",
		EncodeCaller: zapcore.ShortCallerEncoder,

		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// initialFields skips empty values, like StringFields.
func initialFields(opts Options) map[string]any {
	fields := map[string]any{}
	for _, f := range []StringField{{Key: FieldApp, Value: opts.App}, {Key: FieldVersion, Value: opts.Version}} {
		if f.Value != "" {
			fields[f.Key] = f.Value
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
