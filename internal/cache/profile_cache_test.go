package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/personalization"
)

var _ personalization.ProfileStore = (*ProfileCache)(nil)

type countingStore struct {
	profiles map[uuid.UUID]*domain.SubscriberProfile
	gets     int
}

func newCountingStore() *countingStore {
	return &countingStore{profiles: make(map[uuid.UUID]*domain.SubscriberProfile)}
}

func (s *countingStore) Get(_ context.Context, id uuid.UUID) (*domain.SubscriberProfile, error) {
	s.gets++
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *countingStore) Upsert(_ context.Context, p *domain.SubscriberProfile) error {
	cp := *p
	s.profiles[p.SubscriberID] = &cp
	return nil
}

func newTestCache(t *testing.T) (*ProfileCache, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := newCountingStore()
	return NewProfileCache(inner, rdb, time.Minute), inner, mr
}

func TestProfileCache_ReadThrough(t *testing.T) {
	c, inner, _ := newTestCache(t)
	ctx := context.Background()
	id := uuid.New()

	inner.profiles[id] = &domain.SubscriberProfile{
		SubscriberID:       id,
		EngagementScore:    46.3,
		ContentPreferences: domain.PreferenceMap{"stock_analysis": 60},
		BehavioralSegments: domain.SegmentList{domain.SegmentMediumEngagement},
		OptimalSendTime:    "09:00",
	}

	first, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 46.3, first.EngagementScore)
	assert.Equal(t, 1, inner.gets)

	// Second read served from Redis.
	second, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.gets)
}

func TestProfileCache_MissPropagatesNotFound(t *testing.T) {
	c, _, _ := newTestCache(t)

	_, err := c.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileCache_UpsertWritesThrough(t *testing.T) {
	c, inner, _ := newTestCache(t)
	ctx := context.Background()
	id := uuid.New()

	profile := &domain.SubscriberProfile{SubscriberID: id, EngagementScore: 72}
	require.NoError(t, c.Upsert(ctx, profile))

	// Served from the cache without touching the store.
	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 72.0, got.EngagementScore)
	assert.Equal(t, 0, inner.gets)
}

func TestProfileCache_TTLExpiryFallsBack(t *testing.T) {
	c, inner, mr := newTestCache(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, c.Upsert(ctx, &domain.SubscriberProfile{SubscriberID: id, EngagementScore: 30}))
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.EngagementScore)
	assert.Equal(t, 1, inner.gets)
}

func TestProfileCache_Invalidate(t *testing.T) {
	c, inner, _ := newTestCache(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, c.Upsert(ctx, &domain.SubscriberProfile{SubscriberID: id, EngagementScore: 10}))
	require.NoError(t, c.Invalidate(ctx, id))

	_, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets)
}

func TestProfileCache_CorruptEntryRereads(t *testing.T) {
	c, inner, mr := newTestCache(t)
	ctx := context.Background()
	id := uuid.New()

	inner.profiles[id] = &domain.SubscriberProfile{SubscriberID: id, EngagementScore: 55}
	require.NoError(t, mr.Set(profileKeyPrefix+id.String(), "{not json"))

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 55.0, got.EngagementScore)
	assert.Equal(t, 1, inner.gets)
}
