// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// renderKeyPrefix is the Valkey key prefix for rendered fragments.
	renderKeyPrefix = "render:"

	// DefaultRenderTTL is how long a rendered fragment stays cached.
	DefaultRenderTTL = time.Hour
)

// RenderCache stores rendered policy HTML keyed by a hash of the Markdown
// source. Rendering is a pure function of the source, so entries never
// need invalidation on edit; a changed document simply hashes to a new key.
type RenderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRenderCache creates a render cache backed by the given Valkey client.
func NewRenderCache(client *redis.Client, ttl time.Duration) *RenderCache {
	if ttl == 0 {
		ttl = DefaultRenderTTL
	}
	return &RenderCache{client: client, ttl: ttl}
}

// Key derives the cache key for source rendered in the given variant
// (for example "raw" or "sanitized").
func Key(variant, source string) string {
	sum := sha256.Sum256([]byte(source))
	return variant + ":" + hex.EncodeToString(sum[:])
}

// Get retrieves cached HTML. The second result is false on a miss or error.
func (rc *RenderCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := rc.client.Get(ctx, renderKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		slog.Warn("render cache get error", "key", key, "error", err)
		return "", false
	}
	slog.Debug("render cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML with the configured TTL.
func (rc *RenderCache) Set(ctx context.Context, key, html string) {
	if err := rc.client.Set(ctx, renderKeyPrefix+key, html, rc.ttl).Err(); err != nil {
		slog.Warn("render cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached fragment by scanning for the prefix.
// The server calls it at startup to drop fragments left by older builds.
func (rc *RenderCache) InvalidateAll(ctx context.Context) (int, error) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, renderKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("render cache cleared", "deleted", deleted)
	}
	return deleted, nil
}
