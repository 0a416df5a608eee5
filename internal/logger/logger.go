package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hvacpro/proposals/internal/config"
)

const serviceName = "hvac-proposals"

// New builds the service logger. The production stage logs JSON; every other stage logs
// human-readable console output.
func New(stage, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if stage == config.StageProd {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.InitialFields = map[string]interface{}{
			"service": serviceName,
			"stage":   stage,
		}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	return cfg.Build()
}

// parseLevel falls back to info for an empty or unknown level.
func parseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
