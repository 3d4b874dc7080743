package personalization

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

// Segment thresholds shared by the engagement and churn tiers.
const (
	tierHighThreshold   = 70.0
	tierMediumThreshold = 40.0
)

// Segments classifies a subscriber into its ordered behavioral label set:
// exactly one engagement tier, exactly one churn tier, and at most one
// content-focus label. Returns domain.ErrNotFound for an unknown subscriber.
func (e *Engine) Segments(ctx context.Context, subscriberID uuid.UUID) (domain.SegmentList, error) {
	engagement, err := e.EngagementScore(ctx, subscriberID, DefaultScoringWindowDays)
	if err != nil {
		return nil, err
	}
	churn, err := e.ChurnRisk(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	prefs, err := e.ContentPreferences(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	return classifySegments(engagement, churn, prefs), nil
}

// classifySegments applies the threshold rules to already-computed signals.
func classifySegments(engagement, churn float64, prefs domain.PreferenceMap) domain.SegmentList {
	segments := make(domain.SegmentList, 0, 3)

	switch {
	case engagement >= tierHighThreshold:
		segments = append(segments, domain.SegmentHighEngagement)
	case engagement >= tierMediumThreshold:
		segments = append(segments, domain.SegmentMediumEngagement)
	default:
		segments = append(segments, domain.SegmentLowEngagement)
	}

	switch {
	case churn >= tierHighThreshold:
		segments = append(segments, domain.SegmentHighChurnRisk)
	case churn >= tierMediumThreshold:
		segments = append(segments, domain.SegmentMediumChurnRisk)
	default:
		segments = append(segments, domain.SegmentLowChurnRisk)
	}

	if focus, ok := focusSegment(prefs); ok {
		segments = append(segments, focus)
	}

	return segments
}

// focusSegment maps the top-scoring preference section to a content-focus
// label. Ties resolve to the lexicographically smallest section name so the
// result is stable across runs regardless of map iteration order.
func focusSegment(prefs domain.PreferenceMap) (string, bool) {
	if len(prefs) == 0 {
		return "", false
	}

	var top string
	var topScore float64
	first := true
	for section, score := range prefs {
		if first || score > topScore || (score == topScore && section < top) {
			top = section
			topScore = score
			first = false
		}
	}

	lower := strings.ToLower(top)
	switch {
	case strings.Contains(lower, "stock_analysis"):
		return domain.SegmentStockFocused, true
	case strings.Contains(lower, "market"):
		return domain.SegmentMarketFocused, true
	case strings.Contains(lower, "news"):
		return domain.SegmentNewsFocused, true
	}
	return "", false
}
