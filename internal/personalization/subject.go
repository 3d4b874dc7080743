package personalization

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

// PersonalizeSubject rewrites a base subject line for the subscriber using
// its profiled segments. A missing subscriber or profile is not an error:
// the base subject is returned unchanged so the sending pipeline never
// breaks on incomplete analytics.
func (e *Engine) PersonalizeSubject(ctx context.Context, subscriberID uuid.UUID, contentSummary, baseSubject string) (string, error) {
	profile, err := e.profiles.Get(ctx, subscriberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return baseSubject, nil
		}
		return baseSubject, err
	}
	return personalizeSubject(profile.BehavioralSegments, contentSummary, baseSubject), nil
}

// personalizeSubject applies the rule chain. Rules run in order:
// engagement-tier prefix, then content-focus prefix (which replaces the
// engagement prefix when its keyword matches the summary), then the
// churn-risk prefix wrapping whatever the earlier rules produced.
func personalizeSubject(segments domain.SegmentList, contentSummary, baseSubject string) string {
	subject := baseSubject

	if segments.Contains(domain.SegmentHighEngagement) {
		subject = "🔥 " + baseSubject
	} else if segments.Contains(domain.SegmentLowEngagement) {
		subject = "Quick Read: " + baseSubject
	}

	summary := strings.ToLower(contentSummary)
	if segments.Contains(domain.SegmentStockFocused) && strings.Contains(summary, "stock") {
		subject = "📈 Stock Alert: " + baseSubject
	} else if segments.Contains(domain.SegmentMarketFocused) && strings.Contains(summary, "market") {
		subject = "📊 Market Update: " + baseSubject
	}

	if segments.Contains(domain.SegmentHighChurnRisk) {
		subject = "Don't Miss: " + subject
	}

	return subject
}
