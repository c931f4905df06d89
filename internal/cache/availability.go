// Package cache puts a short-TTL Redis cache in front of the multi-day
// availability scan, which otherwise issues per-day conflict reads across
// wide date ranges.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DateLister is the availability query being cached.
type DateLister interface {
	AvailableDates(ctx context.Context, employeeID, serviceID string, from, to time.Time) ([]time.Time, error)
}

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// AvailableDates decorates a DateLister with caching. Bookings committed
// by other processes invalidate only by TTL expiry, so the TTL stays short;
// stale positives are re-checked by the confirmation guard anyway. Redis
// errors fail open to the underlying query.
type AvailableDates struct {
	next   DateLister
	rdb    redisClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewAvailableDates(next DateLister, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *AvailableDates {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailableDates{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *AvailableDates) AvailableDates(ctx context.Context, employeeID, serviceID string, from, to time.Time) ([]time.Time, error) {
	key := fmt.Sprintf("avail:%s:%s:%s:%s", employeeID, serviceID, from.Format("2006-01-02"), to.Format("2006-01-02"))

	raw, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var dates []time.Time
		if err := json.Unmarshal([]byte(raw), &dates); err == nil {
			return dates, nil
		}
		// Unreadable entry: fall through and overwrite it.
	} else if err != redis.Nil {
		c.logger.Warn("availability cache read failed", "err", err)
	}

	dates, err := c.next.AvailableDates(ctx, employeeID, serviceID, from, to)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(dates); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("availability cache write failed", "err", err)
		}
	}
	return dates, nil
}
