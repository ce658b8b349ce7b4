package stats

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRecorder tallies outcomes in Redis so counters survive restarts and
// aggregate across replicas. Cumulative totals never expire; daily buckets
// carry a TTL.
type RedisRecorder struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisRecorder.
type RedisOption func(*RedisRecorder)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *RedisRecorder) { r.prefix = strings.Trim(prefix, ":") }
}

// WithBucketTTL overrides the daily bucket expiry.
func WithBucketTTL(ttl time.Duration) RedisOption {
	return func(r *RedisRecorder) { r.ttl = ttl }
}

// NewRedisRecorder creates a recorder on the provided client.
func NewRedisRecorder(rdb *redis.Client, opts ...RedisOption) *RedisRecorder {
	r := &RedisRecorder{
		rdb:    rdb,
		prefix: "pixelbattle:stats",
		ttl:    48 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record implements Recorder.
func (r *RedisRecorder) Record(ctx context.Context, outcome Outcome) error {
	if r == nil || r.rdb == nil {
		return nil
	}

	at := outcome.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	field := "denied"
	if outcome.Accepted {
		field = "accepted"
	}

	totalKey := r.prefix + ":total"
	dayKey := r.prefix + ":day:" + at.UTC().Format("2006-01-02")

	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, totalKey, field, 1)
	pipe.HIncrBy(ctx, dayKey, field, 1)
	if !outcome.Accepted && outcome.Reason != "" {
		pipe.HIncrBy(ctx, totalKey, "denied:"+outcome.Reason, 1)
	}
	if r.ttl > 0 {
		pipe.Expire(ctx, dayKey, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}
