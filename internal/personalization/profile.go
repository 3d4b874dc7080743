package personalization

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

// RebuildProfile recomputes every analytics signal for the subscriber and
// overwrites its profile row. The call is idempotent: the same event history
// always yields the same scores, segments and send time.
//
// Returns domain.ErrNotFound when the subscriber is unknown; a profile
// cannot be derived without a signup time.
func (e *Engine) RebuildProfile(ctx context.Context, subscriberID uuid.UUID) (*domain.SubscriberProfile, error) {
	engagement, err := e.EngagementScore(ctx, subscriberID, DefaultScoringWindowDays)
	if err != nil {
		return nil, fmt.Errorf("engagement score: %w", err)
	}
	churn, err := e.ChurnRisk(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	prefs, err := e.ContentPreferences(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("content preferences: %w", err)
	}

	sendTime, err := e.optimalSendTime(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("optimal send time: %w", err)
	}

	profile := &domain.SubscriberProfile{
		SubscriberID:       subscriberID,
		EngagementScore:    engagement,
		ContentPreferences: prefs,
		BehavioralSegments: classifySegments(engagement, churn, prefs),
		ChurnRiskScore:     churn,
		OptimalSendTime:    sendTime,
		LastUpdated:        e.now().UTC(),
	}

	if err := e.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return profile, nil
}

// optimalSendTime picks the hour with the most email opens in the trailing
// 30 days, formatted "HH:00". Ties resolve to the lowest hour; a subscriber
// with no opens gets the default morning slot.
func (e *Engine) optimalSendTime(ctx context.Context, subscriberID uuid.UUID) (string, error) {
	since := e.now().Add(-DefaultScoringWindowDays * 24 * time.Hour)
	opens, err := e.events.Events(ctx, subscriberID, &since, domain.EventEmailOpen)
	if err != nil {
		return "", err
	}
	if len(opens) == 0 {
		return domain.DefaultSendTime, nil
	}

	var counts [24]int
	for _, ev := range opens {
		counts[ev.Timestamp.Hour()]++
	}

	best := 0
	for hour := 1; hour < 24; hour++ {
		if counts[hour] > counts[best] {
			best = hour
		}
	}
	return fmt.Sprintf("%02d:00", best), nil
}
