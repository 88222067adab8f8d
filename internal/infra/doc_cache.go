package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// docCacheTTL bounds staleness of the fallback copy. A week is generous on
// purpose: the cache only matters when the primary store has lost a document,
// and an old inventory beats an empty one.
const docCacheTTL = 7 * 24 * time.Hour

// DocCache keeps the most recently persisted copy of each state document in
// Redis. It is the fallback read path when the primary store has no document
// for an organization, and is refreshed on every successful persist.
type DocCache struct {
	rdb *redis.Client
}

func NewDocCache(rdb *redis.Client) *DocCache { return &DocCache{rdb: rdb} }

func docCacheKey(orgID uuid.UUID, kind string) string {
	return fmt.Sprintf("doccache:%s:%s", orgID, kind)
}

// Get returns the cached document, or (nil, nil) on a miss.
func (c *DocCache) Get(ctx context.Context, orgID uuid.UUID, kind string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, docCacheKey(orgID, kind)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *DocCache) Set(ctx context.Context, orgID uuid.UUID, kind string, data []byte) error {
	return c.rdb.Set(ctx, docCacheKey(orgID, kind), data, docCacheTTL).Err()
}
