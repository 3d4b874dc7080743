package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

// MemoryStore is an in-process implementation of the same surface as Store.
// It backs demo mode and tests that do not need Postgres.
type MemoryStore struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]domain.Subscriber
	byEmail     map[string]uuid.UUID
	events      []domain.EngagementEvent
	profiles    map[uuid.UUID]domain.SubscriberProfile
	content     map[uuid.UUID]domain.ContentItem
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[uuid.UUID]domain.Subscriber),
		byEmail:     make(map[string]uuid.UUID),
		profiles:    make(map[uuid.UUID]domain.SubscriberProfile),
		content:     make(map[uuid.UUID]domain.ContentItem),
	}
}

// CreateSubscriber inserts a subscriber, reusing the existing row when the
// email is already registered.
func (m *MemoryStore) CreateSubscriber(_ context.Context, sub *domain.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	if existing, ok := m.byEmail[sub.Email]; ok {
		stored := m.subscribers[existing]
		stored.FirstName = sub.FirstName
		stored.LastName = sub.LastName
		stored.UpdatedAt = time.Now()
		m.subscribers[existing] = stored
		*sub = stored
		return nil
	}

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.SignupDate.IsZero() {
		sub.SignupDate = now
	}
	if sub.SubscriptionTier == "" {
		sub.SubscriptionTier = domain.TierBasic
	}

	m.subscribers[sub.ID] = *sub
	m.byEmail[sub.Email] = sub.ID
	return nil
}

func (m *MemoryStore) GetSubscriber(_ context.Context, id uuid.UUID) (*domain.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subscribers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sub, nil
}

func (m *MemoryStore) GetSubscriberByEmail(_ context.Context, email string) (*domain.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sub := m.subscribers[id]
	return &sub, nil
}

// ListSubscribers returns a page of subscribers, newest signups first,
// optionally filtered by behavioral segment.
func (m *MemoryStore) ListSubscribers(ctx context.Context, limit, offset int, segment string) ([]domain.Subscriber, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []domain.Subscriber
	for _, sub := range m.subscribers {
		if segment != "" {
			profile, ok := m.profiles[sub.ID]
			if !ok || !profile.BehavioralSegments.Contains(segment) {
				continue
			}
		}
		all = append(all, sub)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SignupDate.After(all[j].SignupDate) })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// AllSubscribers satisfies personalization.AudienceSource.
func (m *MemoryStore) AllSubscribers(_ context.Context) ([]domain.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]domain.Subscriber, 0, len(m.subscribers))
	for _, sub := range m.subscribers {
		all = append(all, sub)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SignupDate.Before(all[j].SignupDate) })
	return all, nil
}

// SignupTime satisfies personalization.SubscriberSource.
func (m *MemoryStore) SignupTime(_ context.Context, id uuid.UUID) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subscribers[id]
	if !ok {
		return time.Time{}, domain.ErrNotFound
	}
	return sub.SignupDate, nil
}

// InsertEvent appends an engagement event.
func (m *MemoryStore) InsertEvent(_ context.Context, ev *domain.EngagementEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	m.events = append(m.events, *ev)
	return nil
}

// Events satisfies personalization.EventSource.
func (m *MemoryStore) Events(_ context.Context, subscriberID uuid.UUID, since *time.Time, eventType domain.EventType) ([]domain.EngagementEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.EngagementEvent
	for _, ev := range m.events {
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
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// MostRecent satisfies personalization.EventSource.
func (m *MemoryStore) MostRecent(_ context.Context, subscriberID uuid.UUID) (*domain.EngagementEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var newest *domain.EngagementEvent
	for i := range m.events {
		ev := m.events[i]
		if ev.SubscriberID != subscriberID {
			continue
		}
		if newest == nil || ev.Timestamp.After(newest.Timestamp) {
			cp := ev
			newest = &cp
		}
	}
	return newest, nil
}

// EventsSince satisfies personalization.AudienceSource.
func (m *MemoryStore) EventsSince(_ context.Context, since time.Time) ([]domain.EngagementEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.EngagementEvent
	for _, ev := range m.events {
		if !ev.Timestamp.Before(since) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// RecentEvents returns the newest events for a subscriber.
func (m *MemoryStore) RecentEvents(_ context.Context, subscriberID uuid.UUID, limit int) ([]domain.EngagementEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.EngagementEvent
	for _, ev := range m.events {
		if ev.SubscriberID == subscriberID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Upsert satisfies personalization.ProfileStore.
func (m *MemoryStore) Upsert(_ context.Context, profile *domain.SubscriberProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[profile.SubscriberID] = *profile
	return nil
}

// Get satisfies personalization.ProfileStore.
func (m *MemoryStore) Get(_ context.Context, subscriberID uuid.UUID) (*domain.SubscriberProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	profile, ok := m.profiles[subscriberID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &profile, nil
}

// CreateContentItem inserts a content item.
func (m *MemoryStore) CreateContentItem(_ context.Context, item *domain.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	m.content[item.ID] = *item
	return nil
}

// ContentItems returns content items, optionally filtered to one newsletter.
func (m *MemoryStore) ContentItems(_ context.Context, newsletterID string) ([]domain.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []domain.ContentItem
	for _, item := range m.content {
		if newsletterID != "" && item.NewsletterID != newsletterID {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

// AllContentItems satisfies personalization.AudienceSource.
func (m *MemoryStore) AllContentItems(ctx context.Context) ([]domain.ContentItem, error) {
	return m.ContentItems(ctx, "")
}
