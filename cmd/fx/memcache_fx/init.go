package memcache_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tripdaddy/internal/infra"
	"tripdaddy/pkg/config"
	mem "tripdaddy/pkg/memcache"
)

var Module = fx.Provide(provideResponseCache)

// provideResponseCache uses redis when REDIS_URL is set so cached model
// answers are shared between instances, and an in-process cache otherwise.
func provideResponseCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (mem.ResponseCache, error) {
	if cfg.Cache.RedisURL == "" {
		log.Info("using in-process response cache")
		return mem.NewLocalCache(cfg.Cache.TTL), nil
	}

	client, err := infra.InitRedis(context.Background(), cfg.Cache.RedisURL)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(client.Close))
	log.Info("using redis response cache")
	return mem.NewRedisCache(client, "tripdaddy:"), nil
}
