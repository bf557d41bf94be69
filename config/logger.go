package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the production JSON logger; debug mode lowers the level
func NewLogger(mode string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if mode == "debug" {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
