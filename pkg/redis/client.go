package redis

import (
	"github.com/redis/go-redis/v9"

	"talentlink/internal/config"
)

// NewClient builds the shared Redis client used for caching and event dedupe.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
