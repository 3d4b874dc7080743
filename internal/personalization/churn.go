package personalization

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

// Churn risk factor parameters.
const (
	churnRecentWindowDays = 14

	// Baseline risk for a subscriber with no triggered risk factors.
	// Deliberately non-zero: an active subscriber is never risk-free.
	churnBaselineRisk = 10.0
)

// ChurnRisk estimates disengagement likelihood as a 0-100 score (in practice
// 10-100: the baseline floor applies when no factor fires). Returns
// domain.ErrNotFound for an unknown subscriber since signup age cannot be
// derived.
//
// Risk factors are independent and accumulate:
//   - stale engagement: last event more than 14 days ago
//   - low recent activity: fewer than 2 events in 14 days
//   - never-activated new signup: no events within the first 7 days
//   - lapsed long-term subscriber: 90+ days old with no recent events
func (e *Engine) ChurnRisk(ctx context.Context, subscriberID uuid.UUID) (float64, error) {
	signup, err := e.subscribers.SignupTime(ctx, subscriberID)
	if err != nil {
		return 0, err
	}

	now := e.now()
	daysSinceSignup := daysBetween(now, signup)

	since := now.Add(-churnRecentWindowDays * 24 * time.Hour)
	recent, err := e.events.Events(ctx, subscriberID, &since, "")
	if err != nil {
		return 0, err
	}
	recentEvents := len(recent)

	last, err := e.events.MostRecent(ctx, subscriberID)
	if err != nil {
		return 0, err
	}

	daysSinceLastEngagement := daysSinceSignup
	if last != nil {
		daysSinceLastEngagement = daysBetween(now, last.Timestamp)
	}

	risk := 0.0

	if daysSinceLastEngagement > 14 {
		risk += math.Min(float64(daysSinceLastEngagement)*2, 40)
	}
	if recentEvents < 2 {
		risk += 30
	}
	if daysSinceSignup <= 7 && recentEvents == 0 {
		risk += 50
	}
	if daysSinceSignup > 90 && recentEvents < 1 {
		risk += 35
	}

	if risk == 0 {
		return churnBaselineRisk, nil
	}
	return math.Min(risk, 100.0), nil
}
