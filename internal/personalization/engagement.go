package personalization

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

// Engagement score weighting: opens 30%, clicks 40%, content views 30%.
const (
	openWeight  = 30.0
	clickWeight = 40.0
	viewWeight  = 30.0
)

// EngagementScore computes a 0-100 engagement score over the trailing
// window. days <= 0 falls back to DefaultScoringWindowDays.
//
// The send volume is estimated as one newsletter per day, capped at 30; the
// service does not consume an actual send log. A subscriber with zero events
// in the window scores 0. Click rate is forced to 0 when there are no opens
// in the window (clicks without opens are tracking noise).
func (e *Engine) EngagementScore(ctx context.Context, subscriberID uuid.UUID, days int) (float64, error) {
	if days <= 0 {
		days = DefaultScoringWindowDays
	}

	since := e.now().Add(-time.Duration(days) * 24 * time.Hour)
	events, err := e.events.Events(ctx, subscriberID, &since, "")
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	var opens, clicks, views int
	for _, ev := range events {
		switch ev.EventType {
		case domain.EventEmailOpen:
			opens++
		case domain.EventLinkClick:
			clicks++
		case domain.EventContentView:
			views++
		}
	}

	totalEmails := float64(min(days, 30))

	openRate := math.Min(float64(opens)/totalEmails, 1.0)
	clickRate := 0.0
	if opens > 0 {
		clickRate = math.Min(float64(clicks)/totalEmails, 1.0)
	}
	viewRate := math.Min(float64(views)/totalEmails, 1.0)

	score := openRate*openWeight + clickRate*clickWeight + viewRate*viewWeight
	return math.Min(score, 100.0), nil
}
