// internal/cache/redis.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Redis is a Cache backed by a Redis server. Expiry is delegated to Redis
// through the SET expiration argument.
type Redis struct {
	client *redis.Client
	prefix string
	tracer trace.Tracer
}

var _ Cache = (*Redis)(nil)

// NewRedis creates a Redis-backed cache. All keys are namespaced under prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		tracer: otel.Tracer("bookvault/cache"),
	}
}

func (r *Redis) key(key string) string {
	return r.prefix + ":" + key
}

// Get returns the value for key if present.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := r.tracer.Start(ctx, "cache.get",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	return value, true, nil
}

// Set stores value under key for ttl.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span := r.tracer.Start(ctx, "cache.set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_ms", ttl.Milliseconds()),
		),
	)
	defer span.End()

	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate removes any entry for key.
func (r *Redis) Invalidate(ctx context.Context, key string) error {
	ctx, span := r.tracer.Start(ctx, "cache.invalidate",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
