// Package logging builds the daemon's structured logger, selecting a
// JSON or console encoder based on CENTY_ENV.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvVar is the environment variable selecting the logging mode.
const EnvVar = "CENTY_ENV"

// New builds a *zap.SugaredLogger: JSON encoding in production (the
// default), human-readable console encoding when CENTY_ENV=development.
func New() (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if os.Getenv(EnvVar) == "development" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything, used by components and
// tests that don't care about log output.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
