package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"tunescout/logger"
	"tunescout/model"
)

// searchCacheTTL bounds how long a cached result set is served before
// a fresh catalog search is forced.
const searchCacheTTL = 30 * time.Minute

func searchKey(condition model.Condition, query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return fmt.Sprintf("search:%s:%s", condition, normalized)
}

// GetSearchResults returns the cached track list for a query, or
// (nil, false) on a miss. A nil client or a Redis error both count as
// a miss so the caller always falls through to a live search.
func GetSearchResults(ctx context.Context, condition model.Condition, query string) ([]model.Track, bool) {
	if RedisClient == nil {
		return nil, false
	}

	raw, err := RedisClient.Get(ctx, searchKey(condition, query)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("search cache read failed", logger.ErrorField(err))
		}
		return nil, false
	}

	var tracks []model.Track
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		logger.Warn("search cache entry corrupt, discarding", logger.ErrorField(err))
		return nil, false
	}
	return tracks, true
}

// SetSearchResults stores a track list for a query. Failures are logged
// only; caching is best-effort.
func SetSearchResults(ctx context.Context, condition model.Condition, query string, tracks []model.Track) {
	if RedisClient == nil {
		return
	}

	raw, err := json.Marshal(tracks)
	if err != nil {
		logger.Warn("search cache marshal failed", logger.ErrorField(err))
		return
	}

	if err := RedisClient.Set(ctx, searchKey(condition, query), raw, searchCacheTTL).Err(); err != nil {
		logger.Warn("search cache write failed", logger.ErrorField(err))
	}
}
