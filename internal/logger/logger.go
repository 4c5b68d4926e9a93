package logger

import (
	"github.com/Domenick1991/travelbooking/config"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON logger in production and a colored console logger
// otherwise. An empty level means info.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}

	var zcfg zap.Config
	if cfg.Production {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.Level = atomic

	log, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return log, nil
}
