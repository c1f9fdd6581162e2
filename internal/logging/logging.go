// README: zap logger construction shared by the API, CLI and bench binaries.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config contains logging configuration
type Config struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string

	// Format is the output format (json, console)
	Format string

	// Development enables caller and stacktrace annotations on warnings
	Development bool
}

func DefaultConfig() Config {
	return Config{Level: "info", Format: "json"}
}

// New builds a logger writing to stderr.
func New(cfg Config) (*zap.Logger, error) {
	return newWithSink(cfg, zapcore.Lock(os.Stderr))
}

func newWithSink(cfg Config, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, sink, level)
	if cfg.Development {
		return zap.New(core, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.WarnLevel)), nil
	}
	return zap.New(core, zap.AddCaller()), nil
}

// Nop returns a logger that discards everything; services fall back to it when given nil.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
