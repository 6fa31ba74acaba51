package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pageKeyPrefix = "catalog:page:"

// PageCache remembers fetched pages by URL so repeated scraper runs can skip the
// network for pages that were downloaded recently.
type PageCache interface {
	Get(ctx context.Context, url string) (html string, ok bool, err error)
	Set(ctx context.Context, url, html string) error
}

type redisPageCache struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

// NewRedisPageCache stores pages as Redis strings that expire after ttl. A zero ttl
// keeps them forever.
func NewRedisPageCache(redisClient *redis.Client, ttl time.Duration) PageCache {
	return &redisPageCache{
		redisClient: redisClient,
		keyPrefix:   pageKeyPrefix,
		ttl:         ttl,
	}
}

func (c *redisPageCache) Get(ctx context.Context, url string) (string, bool, error) {
	html, err := c.redisClient.Get(ctx, c.keyPrefix+url).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cached page %s: %w", url, err)
	}
	return html, true, nil
}

func (c *redisPageCache) Set(ctx context.Context, url, html string) error {
	if err := c.redisClient.Set(ctx, c.keyPrefix+url, html, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache page %s: %w", url, err)
	}
	return nil
}

// NopPageCache never hits.
type NopPageCache struct{}

func (NopPageCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (NopPageCache) Set(context.Context, string, string) error { return nil }
