// Package store persists subscribers, engagement events, content items and
// derived profiles. The Postgres store is the production backend; the memory
// store backs tests and demo mode. Both satisfy the source interfaces the
// personalization engine consumes.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

// Store provides database operations for the personalization entities.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateSubscriber inserts a subscriber. The email is normalized to lower
// case; a duplicate email returns the existing row untouched apart from
// name fields.
func (s *Store) CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.SignupDate.IsZero() {
		sub.SignupDate = now
	}
	if sub.SubscriptionTier == "" {
		sub.SubscriptionTier = domain.TierBasic
	}

	query := `INSERT INTO subscribers (id, email, first_name, last_name, signup_date,
		platform_id, platform_subscriber_id, subscription_tier, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (email) DO UPDATE SET first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name, updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query, sub.ID, sub.Email, sub.FirstName, sub.LastName,
		sub.SignupDate, sub.PlatformID, sub.PlatformSubscriberID, sub.SubscriptionTier,
		sub.Preferences, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}
	return nil
}

const subscriberColumns = `id, email, first_name, last_name, signup_date, platform_id,
	platform_subscriber_id, subscription_tier, preferences, created_at, updated_at`

func scanSubscriber(row interface{ Scan(...interface{}) error }) (*domain.Subscriber, error) {
	sub := &domain.Subscriber{}
	err := row.Scan(&sub.ID, &sub.Email, &sub.FirstName, &sub.LastName, &sub.SignupDate,
		&sub.PlatformID, &sub.PlatformSubscriberID, &sub.SubscriptionTier, &sub.Preferences,
		&sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// GetSubscriber retrieves a subscriber by ID.
func (s *Store) GetSubscriber(ctx context.Context, id uuid.UUID) (*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id = $1`
	return scanSubscriber(s.db.QueryRowContext(ctx, query, id))
}

// GetSubscriberByEmail retrieves a subscriber by normalized email.
func (s *Store) GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE email = $1`
	return scanSubscriber(s.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// ListSubscribers returns a page of subscribers, newest signups first. A
// non-empty segment restricts to subscribers whose profile carries that
// behavioral label.
func (s *Store) ListSubscribers(ctx context.Context, limit, offset int, segment string) ([]domain.Subscriber, int, error) {
	var (
		total      int
		countQuery string
		listQuery  string
		args       []interface{}
	)

	if segment != "" {
		countQuery = `SELECT COUNT(*) FROM subscribers s
			JOIN subscriber_profiles p ON p.subscriber_id = s.id
			WHERE p.behavioral_segments @> $1`
		listQuery = `SELECT ` + prefixColumns("s", subscriberColumns) + ` FROM subscribers s
			JOIN subscriber_profiles p ON p.subscriber_id = s.id
			WHERE p.behavioral_segments @> $1
			ORDER BY s.signup_date DESC LIMIT $2 OFFSET $3`
		label, _ := domain.SegmentList{segment}.Value()
		args = []interface{}{label}
	} else {
		countQuery = `SELECT COUNT(*) FROM subscribers`
		listQuery = `SELECT ` + subscriberColumns + ` FROM subscribers
			ORDER BY signup_date DESC LIMIT $1 OFFSET $2`
	}

	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscribers: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, listQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *sub)
	}
	return subs, total, rows.Err()
}

// AllSubscribers returns every subscriber. Satisfies
// personalization.AudienceSource.
func (s *Store) AllSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers ORDER BY signup_date`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("all subscribers: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// SignupTime satisfies personalization.SubscriberSource.
func (s *Store) SignupTime(ctx context.Context, id uuid.UUID) (time.Time, error) {
	var signup time.Time
	err := s.db.QueryRowContext(ctx, `SELECT signup_date FROM subscribers WHERE id = $1`, id).Scan(&signup)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("signup time: %w", err)
	}
	return signup, nil
}

// InsertEvent appends an engagement event. Events are immutable once written.
func (s *Store) InsertEvent(ctx context.Context, ev *domain.EngagementEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	query := `INSERT INTO engagement_events (id, subscriber_id, event_type, event_data,
		newsletter_id, content_section, platform_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query, ev.ID, ev.SubscriberID, ev.EventType, ev.EventData,
		ev.NewsletterID, ev.ContentSection, ev.PlatformID, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

const eventColumns = `id, subscriber_id, event_type, event_data, newsletter_id,
	content_section, platform_id, timestamp`

func scanEvent(row interface{ Scan(...interface{}) error }) (*domain.EngagementEvent, error) {
	ev := &domain.EngagementEvent{}
	err := row.Scan(&ev.ID, &ev.SubscriberID, &ev.EventType, &ev.EventData,
		&ev.NewsletterID, &ev.ContentSection, &ev.PlatformID, &ev.Timestamp)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Events satisfies personalization.EventSource.
func (s *Store) Events(ctx context.Context, subscriberID uuid.UUID, since *time.Time, eventType domain.EventType) ([]domain.EngagementEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM engagement_events WHERE subscriber_id = $1`
	args := []interface{}{subscriberID}

	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if eventType != "" {
		args = append(args, eventType)
		query += fmt.Sprintf(" AND event_type = $%d", len(args))
	}
	query += " ORDER BY timestamp"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.EngagementEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// MostRecent satisfies personalization.EventSource. Returns nil (no error)
// when the subscriber has no events.
func (s *Store) MostRecent(ctx context.Context, subscriberID uuid.UUID) (*domain.EngagementEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM engagement_events
		WHERE subscriber_id = $1 ORDER BY timestamp DESC LIMIT 1`

	ev, err := scanEvent(s.db.QueryRowContext(ctx, query, subscriberID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("most recent event: %w", err)
	}
	return ev, nil
}

// EventsSince satisfies personalization.AudienceSource.
func (s *Store) EventsSince(ctx context.Context, since time.Time) ([]domain.EngagementEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM engagement_events WHERE timestamp >= $1 ORDER BY timestamp`
	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("events since: %w", err)
	}
	defer rows.Close()

	var events []domain.EngagementEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// RecentEvents returns the newest events for a subscriber, for the event
// query endpoint.
func (s *Store) RecentEvents(ctx context.Context, subscriberID uuid.UUID, limit int) ([]domain.EngagementEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM engagement_events
		WHERE subscriber_id = $1 ORDER BY timestamp DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, subscriberID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var events []domain.EngagementEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// Upsert satisfies personalization.ProfileStore: one row per subscriber,
// recomputation overwrites.
func (s *Store) Upsert(ctx context.Context, profile *domain.SubscriberProfile) error {
	query := `INSERT INTO subscriber_profiles (subscriber_id, engagement_score,
		content_preferences, behavioral_segments, churn_risk_score, optimal_send_time, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subscriber_id) DO UPDATE SET
			engagement_score = EXCLUDED.engagement_score,
			content_preferences = EXCLUDED.content_preferences,
			behavioral_segments = EXCLUDED.behavioral_segments,
			churn_risk_score = EXCLUDED.churn_risk_score,
			optimal_send_time = EXCLUDED.optimal_send_time,
			last_updated = EXCLUDED.last_updated`

	_, err := s.db.ExecContext(ctx, query, profile.SubscriberID, profile.EngagementScore,
		profile.ContentPreferences, profile.BehavioralSegments, profile.ChurnRiskScore,
		profile.OptimalSendTime, profile.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// Get satisfies personalization.ProfileStore.
func (s *Store) Get(ctx context.Context, subscriberID uuid.UUID) (*domain.SubscriberProfile, error) {
	query := `SELECT subscriber_id, engagement_score, content_preferences, behavioral_segments,
		churn_risk_score, optimal_send_time, last_updated
		FROM subscriber_profiles WHERE subscriber_id = $1`

	profile := &domain.SubscriberProfile{}
	err := s.db.QueryRowContext(ctx, query, subscriberID).Scan(
		&profile.SubscriberID, &profile.EngagementScore, &profile.ContentPreferences,
		&profile.BehavioralSegments, &profile.ChurnRiskScore, &profile.OptimalSendTime,
		&profile.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// CreateContentItem inserts a newsletter content item.
func (s *Store) CreateContentItem(ctx context.Context, item *domain.ContentItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	query := `INSERT INTO content_items (id, newsletter_id, section_name, content_type,
		title, summary, content_text, tags, performance_metrics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query, item.ID, item.NewsletterID, item.SectionName,
		item.ContentType, item.Title, item.Summary, item.ContentText, item.Tags,
		item.PerformanceMetrics, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("create content item: %w", err)
	}
	return nil
}

const contentColumns = `id, newsletter_id, section_name, content_type, title, summary,
	content_text, tags, performance_metrics, created_at`

// ContentItems returns content items, optionally filtered to one newsletter.
func (s *Store) ContentItems(ctx context.Context, newsletterID string) ([]domain.ContentItem, error) {
	query := `SELECT ` + contentColumns + ` FROM content_items`
	var args []interface{}
	if newsletterID != "" {
		query += ` WHERE newsletter_id = $1`
		args = append(args, newsletterID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("content items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		item := domain.ContentItem{}
		if err := rows.Scan(&item.ID, &item.NewsletterID, &item.SectionName, &item.ContentType,
			&item.Title, &item.Summary, &item.ContentText, &item.Tags,
			&item.PerformanceMetrics, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AllContentItems satisfies personalization.AudienceSource.
func (s *Store) AllContentItems(ctx context.Context) ([]domain.ContentItem, error) {
	return s.ContentItems(ctx, "")
}

// prefixColumns qualifies each column in a comma-separated list with a table
// alias, for joined queries.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
