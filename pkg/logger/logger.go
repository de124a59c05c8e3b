// Package logger constructs the process-wide zap logger. It is threaded
// explicitly into constructors that need it rather than kept as a package
// global.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production (JSON) logger, or a development (console) logger
// when ROADTRACK_DEBUG is set, matching the debug/production split used by
// the reference codebase's command-line entrypoints.
func New() (*zap.Logger, error) {
	if os.Getenv("ROADTRACK_DEBUG") != "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	return zap.NewProduction()
}
