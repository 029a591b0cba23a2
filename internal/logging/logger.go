// Package logging builds the zap logger shared by the CLI and the daemon.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger at level ("debug", "info", "warn", "error"; anything
// else is info) using the "json" or "console" encoder.
func New(level, format string) (*zap.Logger, error) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		zl = zapcore.InfoLevel
	}

	encoding := "console"
	if strings.EqualFold(format, "json") {
		encoding = "json"
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zl),
		Encoding:         encoding,
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}

// Nop discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Mask hides the middle of a secret, keeping keep characters at each end.
// Short values are replaced entirely.
func Mask(s string, keep int) string {
	if s == "" {
		return ""
	}
	if len(s) <= keep+2 {
		return "***"
	}
	return s[:keep] + "..." + s[len(s)-keep:]
}
