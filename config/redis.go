package config

import (
	"context"

	"myhotel/redisstore"
)

func OpenRedis(ctx context.Context, cfg RedisConfig) (*redisstore.Store, error) {
	return redisstore.New(ctx, redisstore.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
