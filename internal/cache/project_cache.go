package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"talentlink/internal/model"
)

// snapshot is the cached envelope. CachedAt makes staleness explicit instead
// of pretending the copy is live.
type snapshot struct {
	Project  *model.Project `json:"project"`
	CachedAt time.Time      `json:"cached_at"`
}

// ProjectCache keeps JSON snapshots of projects in Redis. A miss or a Redis
// error both read as a miss; the store stays authoritative.
type ProjectCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewProjectCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ProjectCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ProjectCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *ProjectCache) key(projectID int) string {
	return fmt.Sprintf("project:%d", projectID)
}

func (c *ProjectCache) Get(ctx context.Context, projectID int) (*model.Project, bool) {
	data, err := c.rdb.Get(ctx, c.key(projectID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Project cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil || s.Project == nil {
		c.logger.Warn("Project cache entry corrupt", zap.Int("project_id", projectID), zap.Error(err))
		c.rdb.Del(ctx, c.key(projectID))
		return nil, false
	}
	if time.Since(s.CachedAt) > c.ttl {
		return nil, false
	}
	return s.Project, true
}

func (c *ProjectCache) Set(ctx context.Context, p *model.Project) {
	data, err := json.Marshal(snapshot{Project: p, CachedAt: time.Now()})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(p.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Project cache write failed", zap.Int("project_id", p.ID), zap.Error(err))
	}
}

func (c *ProjectCache) Invalidate(ctx context.Context, projectID int) {
	if err := c.rdb.Del(ctx, c.key(projectID)).Err(); err != nil {
		c.logger.Warn("Project cache invalidate failed", zap.Int("project_id", projectID), zap.Error(err))
	}
}
