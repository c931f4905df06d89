package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeLister struct {
	dates []time.Time
	calls int
}

func (f *fakeLister) AvailableDates(context.Context, string, string, time.Time, time.Time) ([]time.Time, error) {
	f.calls++
	return f.dates, nil
}

type fakeRedis struct {
	data   map[string]string
	getErr error
	setErr error
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	if raw, ok := value.([]byte); ok {
		f.data[key] = string(raw)
	}
	return redis.NewStatusResult("OK", nil)
}

func newTestCache(next DateLister, rdb redisClient) *AvailableDates {
	return &AvailableDates{next: next, rdb: rdb, ttl: time.Minute, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestAvailableDates_MissThenHit(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	lister := &fakeLister{dates: []time.Time{day, day.AddDate(0, 0, 2)}}
	rdb := &fakeRedis{data: map[string]string{}}
	c := newTestCache(lister, rdb)
	ctx := context.Background()

	first, err := c.AvailableDates(ctx, "emp-1", "svc-1", day, day.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("miss: %v", err)
	}
	if len(first) != 2 || lister.calls != 1 {
		t.Fatalf("expected 2 dates from 1 upstream call, got %d dates, %d calls", len(first), lister.calls)
	}

	second, err := c.AvailableDates(ctx, "emp-1", "svc-1", day, day.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if lister.calls != 1 {
		t.Fatalf("expected cache hit, upstream called %d times", lister.calls)
	}
	if len(second) != 2 || !second[0].Equal(first[0]) {
		t.Fatalf("cached dates differ: %v vs %v", second, first)
	}
}

func TestAvailableDates_DistinctKeysPerQuery(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	lister := &fakeLister{dates: []time.Time{day}}
	rdb := &fakeRedis{data: map[string]string{}}
	c := newTestCache(lister, rdb)
	ctx := context.Background()

	if _, err := c.AvailableDates(ctx, "emp-1", "svc-1", day, day.AddDate(0, 0, 7)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AvailableDates(ctx, "emp-2", "svc-1", day, day.AddDate(0, 0, 7)); err != nil {
		t.Fatal(err)
	}
	if lister.calls != 2 {
		t.Fatalf("expected distinct employees to miss separately, got %d calls", lister.calls)
	}
}

func TestAvailableDates_RedisErrorFailsOpen(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	lister := &fakeLister{dates: []time.Time{day}}
	rdb := &fakeRedis{data: map[string]string{}, getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	c := newTestCache(lister, rdb)

	dates, err := c.AvailableDates(context.Background(), "emp-1", "svc-1", day, day.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("expected fail-open, got %v", err)
	}
	if len(dates) != 1 || lister.calls != 1 {
		t.Fatalf("expected upstream result, got %d dates, %d calls", len(dates), lister.calls)
	}
}

func TestAvailableDates_CorruptEntryIsOverwritten(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	lister := &fakeLister{dates: []time.Time{day}}
	rdb := &fakeRedis{data: map[string]string{}}
	c := newTestCache(lister, rdb)
	ctx := context.Background()

	key := "avail:emp-1:svc-1:2026-01-05:2026-01-12"
	rdb.data[key] = "{not json"

	dates, err := c.AvailableDates(ctx, "emp-1", "svc-1", day, day.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("expected corrupt entry to fall through, got %v", err)
	}
	if lister.calls != 1 || len(dates) != 1 {
		t.Fatalf("expected upstream recompute, got %d calls", lister.calls)
	}

	var stored []time.Time
	if err := json.Unmarshal([]byte(rdb.data[key]), &stored); err != nil {
		t.Fatalf("expected corrupt entry overwritten with valid json: %v", err)
	}
}
