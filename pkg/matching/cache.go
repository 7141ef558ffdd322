package matching

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ocumatch/platform/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

const suggestionCacheKey = "ocumatch:match:suggestions"

// suggestionCache holds the ranked shortlist between dashboard loads.
// Entries are best effort; a miss or a corrupt entry falls through to a
// fresh rescan.
type suggestionCache interface {
	get(ctx context.Context) []Suggestion
	put(ctx context.Context, suggestions []Suggestion)
	drop(ctx context.Context)
}

type redisSuggestionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisSuggestionCache) get(ctx context.Context) []Suggestion {
	raw, err := c.client.Get(ctx, suggestionCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var suggestions []Suggestion
	if err := json.Unmarshal(raw, &suggestions); err != nil {
		logger.Log.WithError(err).Warn("discarding corrupt suggestion cache entry")
		c.client.Del(ctx, suggestionCacheKey)
		return nil
	}
	return suggestions
}

func (c *redisSuggestionCache) put(ctx context.Context, suggestions []Suggestion) {
	raw, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, suggestionCacheKey, raw, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).Warn("failed to cache suggestions")
	}
}

func (c *redisSuggestionCache) drop(ctx context.Context) {
	if err := c.client.Del(ctx, suggestionCacheKey).Err(); err != nil {
		logger.Log.WithError(err).Warn("failed to invalidate suggestion cache")
	}
}
