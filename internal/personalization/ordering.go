package personalization

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

// OrderContent reorders newsletter content items by the subscriber's
// profiled preferences, highest combined section+type affinity first. The
// sort is stable: items with equal scores keep their input order. A missing
// profile or empty preference map returns the input order unchanged.
func (e *Engine) OrderContent(ctx context.Context, subscriberID uuid.UUID, items []domain.ContentItem) ([]domain.ContentItem, error) {
	profile, err := e.profiles.Get(ctx, subscriberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return items, nil
		}
		return items, err
	}

	prefs := profile.ContentPreferences
	if len(prefs) == 0 {
		return items, nil
	}

	ordered := make([]domain.ContentItem, len(items))
	copy(ordered, items)

	sort.SliceStable(ordered, func(i, j int) bool {
		return preferenceScore(prefs, ordered[i]) > preferenceScore(prefs, ordered[j])
	})
	return ordered, nil
}

// preferenceScore combines the affinity for an item's section and its
// content type. Unknown keys contribute 0.
func preferenceScore(prefs domain.PreferenceMap, item domain.ContentItem) float64 {
	return prefs[item.SectionName] + prefs[item.ContentType]
}
