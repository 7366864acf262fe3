package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option adjusts the logger configuration before it is built.
type Option func(*zap.Config) error

// WithLevel sets the minimum enabled level, e.g. "debug" or "warn".
func WithLevel(level string) Option {
	return func(cfg *zap.Config) error {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return fmt.Errorf("parse level: %w", err)
		}
		cfg.Level = lvl
		return nil
	}
}

// WithEncoding selects "json" or "console" output.
func WithEncoding(encoding string) Option {
	return func(cfg *zap.Config) error {
		switch encoding {
		case "json":
		case "console":
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		default:
			return fmt.Errorf("unsupported encoding %q", encoding)
		}
		cfg.Encoding = encoding
		return nil
	}
}

// New creates a production-ready structured logger, JSON by default.
func New(opts ...Option) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
