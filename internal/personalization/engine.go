// Package personalization computes per-subscriber behavioral analytics
// (engagement score, churn risk, content preferences, behavioral segments,
// optimal send time) from engagement event history, and applies those
// analytics to newsletter presentation: subject-line rewriting and content
// reordering.
//
// All computation is synchronous and request-scoped. The engine reads events
// through injected interfaces and performs a single overwrite of the profile
// row per rebuild; callers that rebuild the same subscriber concurrently must
// serialize externally.
package personalization

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

// DefaultScoringWindowDays is the engagement scoring window used when the
// caller does not supply one.
const DefaultScoringWindowDays = 30

// EventSource provides read-only access to a subscriber's engagement history.
// Implementations must return events as of call time; eventual consistency
// with concurrent writers is acceptable.
type EventSource interface {
	// Events returns a subscriber's events, optionally bounded to
	// timestamp >= since and filtered to a single event type. A zero
	// eventType means all types.
	Events(ctx context.Context, subscriberID uuid.UUID, since *time.Time, eventType domain.EventType) ([]domain.EngagementEvent, error)

	// MostRecent returns the newest event of any type, or nil if the
	// subscriber has no events at all.
	MostRecent(ctx context.Context, subscriberID uuid.UUID) (*domain.EngagementEvent, error)
}

// SubscriberSource resolves subscriber registry data needed by the engine.
type SubscriberSource interface {
	// SignupTime returns the subscriber's signup timestamp, or
	// domain.ErrNotFound if the subscriber does not exist.
	SignupTime(ctx context.Context, subscriberID uuid.UUID) (time.Time, error)
}

// ProfileStore persists derived subscriber profiles. Upsert overwrites the
// single profile row for the subscriber.
type ProfileStore interface {
	Upsert(ctx context.Context, profile *domain.SubscriberProfile) error

	// Get returns the stored profile, or domain.ErrNotFound if the
	// subscriber has never been profiled.
	Get(ctx context.Context, subscriberID uuid.UUID) (*domain.SubscriberProfile, error)
}

// Engine is the personalization core. It holds no mutable state of its own;
// every operation recomputes from the event history visible at call time.
type Engine struct {
	events      EventSource
	subscribers SubscriberSource
	profiles    ProfileStore

	now func() time.Time
	rng *rand.Rand
}

// NewEngine creates an engine over the given sources.
func NewEngine(events EventSource, subscribers SubscriberSource, profiles ProfileStore) *Engine {
	return &Engine{
		events:      events,
		subscribers: subscribers,
		profiles:    profiles,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetClock overrides the engine's time source. Used by tests and by callers
// that need reproducible profile computation.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// SetRand overrides the randomness source used for A/B variant generation.
// Scoring and profile computation never consume randomness.
func (e *Engine) SetRand(rng *rand.Rand) {
	e.rng = rng
}

// daysBetween returns the number of whole days from earlier to later,
// truncated toward zero.
func daysBetween(later, earlier time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}
