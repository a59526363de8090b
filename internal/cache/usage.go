package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	usageKeyPrefix = "usage:"
	usageTTL       = 35 * 24 * time.Hour
)

// UsageKey buckets counts per key and calendar month (UTC).
func UsageKey(keyID string, at time.Time) string {
	return usageKeyPrefix + keyID + ":" + at.UTC().Format("2006-01")
}

// IncrUsage bumps the month's counter and refreshes its expiry.
func (c *Cache) IncrUsage(ctx context.Context, keyID string, at time.Time) (int64, error) {
	key := UsageKey(keyID, at)

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, usageTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to record usage: %w", err)
	}
	return incr.Val(), nil
}

// UsageCounts returns the month's count for each key id. Missing counters read as 0.
func (c *Cache) UsageCounts(ctx context.Context, keyIDs []string, at time.Time) (map[string]int64, error) {
	counts := make(map[string]int64, len(keyIDs))
	if len(keyIDs) == 0 {
		return counts, nil
	}

	keys := make([]string, len(keyIDs))
	for i, id := range keyIDs {
		keys[i] = UsageKey(id, at)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read usage: %w", err)
	}

	for i, id := range keyIDs {
		counts[id] = 0
		if i >= len(vals) || vals[i] == nil {
			continue
		}
		s, ok := vals[i].(string)
		if !ok {
			continue
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			counts[id] = n
		}
	}
	return counts, nil
}
