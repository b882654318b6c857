package config_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripdaddy/pkg/config"
	"tripdaddy/pkg/logger"
)

var Module = fx.Provide(
	config.Load,
	provideLogger,
)

func provideLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() {
		_ = log.Sync()
	}))
	return log, nil
}
