package personalization

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

// ContentPreferences builds the lifetime section-affinity distribution for a
// subscriber. Each score is the percentage of all events (including events
// with no content section) that landed in that section, so scores only sum
// to 100 when every event carries a section. Returns an empty map for a
// subscriber with no events.
func (e *Engine) ContentPreferences(ctx context.Context, subscriberID uuid.UUID) (domain.PreferenceMap, error) {
	events, err := e.events.Events(ctx, subscriberID, nil, "")
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return domain.PreferenceMap{}, nil
	}

	counts := make(map[string]int)
	for _, ev := range events {
		if ev.ContentSection != "" {
			counts[ev.ContentSection]++
		}
	}

	prefs := make(domain.PreferenceMap, len(counts))
	total := float64(len(events))
	for section, n := range counts {
		prefs[section] = float64(n) / total * 100
	}
	return prefs, nil
}
