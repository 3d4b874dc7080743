package personalization

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

var testNow = time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

// fakeSources is an in-memory implementation of every source interface the
// engine and reporter consume.
type fakeSources struct {
	signups     map[uuid.UUID]time.Time
	events      []domain.EngagementEvent
	profiles    map[uuid.UUID]*domain.SubscriberProfile
	subscribers []domain.Subscriber
	content     []domain.ContentItem
	upserts     int
}

func newFakeSources() *fakeSources {
	return &fakeSources{
		signups:  make(map[uuid.UUID]time.Time),
		profiles: make(map[uuid.UUID]*domain.SubscriberProfile),
	}
}

func (f *fakeSources) Events(_ context.Context, subscriberID uuid.UUID, since *time.Time, eventType domain.EventType) ([]domain.EngagementEvent, error) {
	var out []domain.EngagementEvent
	for _, ev := range f.events {
		if ev.SubscriberID != subscriberID {
			continue
		}
		if since != nil && ev.Timestamp.Before(*since) {
			continue
		}
		if eventType != "" && ev.EventType != eventType {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeSources) MostRecent(_ context.Context, subscriberID uuid.UUID) (*domain.EngagementEvent, error) {
	var newest *domain.EngagementEvent
	for i := range f.events {
		ev := &f.events[i]
		if ev.SubscriberID != subscriberID {
			continue
		}
		if newest == nil || ev.Timestamp.After(newest.Timestamp) {
			newest = ev
		}
	}
	return newest, nil
}

func (f *fakeSources) SignupTime(_ context.Context, subscriberID uuid.UUID) (time.Time, error) {
	signup, ok := f.signups[subscriberID]
	if !ok {
		return time.Time{}, domain.ErrNotFound
	}
	return signup, nil
}

func (f *fakeSources) Upsert(_ context.Context, profile *domain.SubscriberProfile) error {
	cp := *profile
	f.profiles[profile.SubscriberID] = &cp
	f.upserts++
	return nil
}

func (f *fakeSources) Get(_ context.Context, subscriberID uuid.UUID) (*domain.SubscriberProfile, error) {
	profile, ok := f.profiles[subscriberID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *profile
	return &cp, nil
}

func (f *fakeSources) AllSubscribers(_ context.Context) ([]domain.Subscriber, error) {
	return f.subscribers, nil
}

func (f *fakeSources) EventsSince(_ context.Context, since time.Time) ([]domain.EngagementEvent, error) {
	var out []domain.EngagementEvent
	for _, ev := range f.events {
		if !ev.Timestamp.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeSources) AllContentItems(_ context.Context) ([]domain.ContentItem, error) {
	return f.content, nil
}

// addEvents appends n events of the given type at the given timestamp.
func (f *fakeSources) addEvents(subscriberID uuid.UUID, eventType domain.EventType, ts time.Time, n int) {
	for i := 0; i < n; i++ {
		f.events = append(f.events, domain.EngagementEvent{
			ID:           uuid.New(),
			SubscriberID: subscriberID,
			EventType:    eventType,
			Timestamp:    ts,
		})
	}
}

func (f *fakeSources) addSectionEvent(subscriberID uuid.UUID, eventType domain.EventType, section string, ts time.Time) {
	f.events = append(f.events, domain.EngagementEvent{
		ID:             uuid.New(),
		SubscriberID:   subscriberID,
		EventType:      eventType,
		ContentSection: section,
		Timestamp:      ts,
	})
}

func newTestEngine(f *fakeSources) *Engine {
	e := NewEngine(f, f, f)
	e.SetClock(func() time.Time { return testNow })
	return e
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
