package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce tries to take the dedup lock for a handler + entity id pair.
// Returns true on the first attempt, false for a redelivered duplicate.
// If Redis is unavailable we let the message through rather than drop it.
func (d *Deduper) AcquireOnce(ctx context.Context, handler string, entityID int) bool {
	key := fmt.Sprintf("dedup:%s:%d", handler, entityID)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
