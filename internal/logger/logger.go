// Package logger adapts zap to the key/value Logger interface used across the
// application.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap logs with alternating key/value args on top of a zap SugaredLogger.
type Zap struct {
	sugar *zap.SugaredLogger
}

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Name   string
}

func New(opts Options) (*Zap, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	cfg := zap.NewProductionConfig()
	switch opts.Format {
	case "", "json":
	case "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if opts.Name != "" {
		base = base.Named(opts.Name)
	}

	return &Zap{sugar: base.Sugar()}, nil
}

// FromZap wraps an existing zap logger.
func FromZap(l *zap.Logger) *Zap {
	return &Zap{sugar: l.Sugar()}
}

// Nop discards everything.
func Nop() *Zap {
	return FromZap(zap.NewNop())
}

func (z *Zap) Error(msg string, args ...interface{}) {
	z.sugar.Errorw(msg, args...)
}

func (z *Zap) Info(msg string, args ...interface{}) {
	z.sugar.Infow(msg, args...)
}

func (z *Zap) Debug(msg string, args ...interface{}) {
	z.sugar.Debugw(msg, args...)
}

// With returns a logger that adds args to every entry.
func (z *Zap) With(args ...interface{}) *Zap {
	return &Zap{sugar: z.sugar.With(args...)}
}

func (z *Zap) Sync() error {
	return z.sugar.Sync()
}
