// Package cache layers a Redis read-through cache over the profile store so
// hot personalization paths (subject rewriting, content ordering) avoid a
// database round trip per request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/personalization"
	"github.com/ignite/personalize-ai/internal/pkg/logger"
)

const profileKeyPrefix = "personalize:profile:"

// DefaultTTL bounds staleness between profile rebuilds.
const DefaultTTL = 5 * time.Minute

// ProfileCache is a write-through, read-through cache in front of a
// ProfileStore. Cache failures degrade to the inner store; they are logged,
// never surfaced.
type ProfileCache struct {
	inner personalization.ProfileStore
	rdb   *redis.Client
	ttl   time.Duration
}

// NewProfileCache wraps inner with a Redis cache. ttl <= 0 uses DefaultTTL.
func NewProfileCache(inner personalization.ProfileStore, rdb *redis.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProfileCache{inner: inner, rdb: rdb, ttl: ttl}
}

func profileKey(subscriberID uuid.UUID) string {
	return profileKeyPrefix + subscriberID.String()
}

// Get returns the cached profile when present, otherwise reads through to
// the inner store and caches the result.
func (c *ProfileCache) Get(ctx context.Context, subscriberID uuid.UUID) (*domain.SubscriberProfile, error) {
	key := profileKey(subscriberID)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		profile := &domain.SubscriberProfile{}
		if err := json.Unmarshal(data, profile); err == nil {
			return profile, nil
		}
		// Corrupt entry; fall through to the store and rewrite it.
		logger.Warn("discarding unreadable cached profile", "subscriber_id", subscriberID.String())
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("profile cache read failed", "error", err.Error())
	}

	profile, err := c.inner.Get(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, profile)
	return profile, nil
}

// Upsert writes through: the store first, then the cache.
func (c *ProfileCache) Upsert(ctx context.Context, profile *domain.SubscriberProfile) error {
	if err := c.inner.Upsert(ctx, profile); err != nil {
		return err
	}
	c.set(ctx, profileKey(profile.SubscriberID), profile)
	return nil
}

// Invalidate drops a subscriber's cached profile, for callers that mutate
// event history out of band.
func (c *ProfileCache) Invalidate(ctx context.Context, subscriberID uuid.UUID) error {
	if err := c.rdb.Del(ctx, profileKey(subscriberID)).Err(); err != nil {
		return fmt.Errorf("invalidate profile cache: %w", err)
	}
	return nil
}

func (c *ProfileCache) set(ctx context.Context, key string, profile *domain.SubscriberProfile) {
	data, err := json.Marshal(profile)
	if err != nil {
		logger.Warn("profile cache marshal failed", "error", err.Error())
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("profile cache write failed", "error", err.Error())
	}
}
