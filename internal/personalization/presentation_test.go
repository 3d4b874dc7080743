package personalization

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/personalize-ai/internal/domain"
)

func TestPersonalizeSubject_RuleChain(t *testing.T) {
	cases := []struct {
		name     string
		segments domain.SegmentList
		summary  string
		want     string
	}{
		{
			name:     "no segments",
			segments: domain.SegmentList{},
			want:     "Daily Journal",
		},
		{
			name:     "high engagement",
			segments: domain.SegmentList{domain.SegmentHighEngagement},
			want:     "🔥 Daily Journal",
		},
		{
			name:     "low engagement",
			segments: domain.SegmentList{domain.SegmentLowEngagement},
			want:     "Quick Read: Daily Journal",
		},
		{
			name:     "stock focus replaces engagement prefix",
			segments: domain.SegmentList{domain.SegmentHighEngagement, domain.SegmentStockFocused},
			summary:  "Three stock picks for fall",
			want:     "📈 Stock Alert: Daily Journal",
		},
		{
			name:     "stock focus without matching summary keeps engagement prefix",
			segments: domain.SegmentList{domain.SegmentHighEngagement, domain.SegmentStockFocused},
			summary:  "Fed watch special",
			want:     "🔥 Daily Journal",
		},
		{
			name:     "market focus",
			segments: domain.SegmentList{domain.SegmentMarketFocused},
			summary:  "Market outlook for September",
			want:     "📊 Market Update: Daily Journal",
		},
		{
			name:     "churn prefix wraps earlier rules",
			segments: domain.SegmentList{domain.SegmentHighEngagement, domain.SegmentHighChurnRisk},
			want:     "Don't Miss: 🔥 Daily Journal",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := personalizeSubject(tc.segments, tc.summary, "Daily Journal")
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPersonalizeSubject_MissingProfileIsNoOp(t *testing.T) {
	f := newFakeSources()
	e := newTestEngine(f)

	subject, err := e.PersonalizeSubject(context.Background(), uuid.New(), "summary", "Base Subject")
	require.NoError(t, err)
	assert.Equal(t, "Base Subject", subject)
}

func TestOrderContent_SortsByPreference(t *testing.T) {
	f := newFakeSources()
	e := newTestEngine(f)
	id := uuid.New()

	f.profiles[id] = &domain.SubscriberProfile{
		SubscriberID: id,
		ContentPreferences: domain.PreferenceMap{
			"stock_analysis":    60,
			"market_commentary": 25,
			"news":              10,
		},
	}

	items := []domain.ContentItem{
		{SectionName: "news", ContentType: "news"},
		{SectionName: "market_commentary", ContentType: "market_commentary"},
		{SectionName: "stock_analysis", ContentType: "stock_analysis"},
	}

	ordered, err := e.OrderContent(context.Background(), id, items)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, "stock_analysis", ordered[0].SectionName)
	assert.Equal(t, "market_commentary", ordered[1].SectionName)
	assert.Equal(t, "news", ordered[2].SectionName)

	// Input slice untouched.
	assert.Equal(t, "news", items[0].SectionName)
}

func TestOrderContent_StableForEqualScores(t *testing.T) {
	f := newFakeSources()
	e := newTestEngine(f)
	id := uuid.New()

	f.profiles[id] = &domain.SubscriberProfile{
		SubscriberID:       id,
		ContentPreferences: domain.PreferenceMap{"stock_analysis": 50},
	}

	items := []domain.ContentItem{
		{SectionName: "intro", Title: "first"},
		{SectionName: "outro", Title: "second"},
		{SectionName: "stock_analysis", Title: "third"},
	}

	ordered, err := e.OrderContent(context.Background(), id, items)
	require.NoError(t, err)
	assert.Equal(t, "third", ordered[0].Title)
	assert.Equal(t, "first", ordered[1].Title)
	assert.Equal(t, "second", ordered[2].Title)
}

func TestOrderContent_NoProfileKeepsOrder(t *testing.T) {
	f := newFakeSources()
	e := newTestEngine(f)

	items := []domain.ContentItem{
		{SectionName: "b"},
		{SectionName: "a"},
	}
	ordered, err := e.OrderContent(context.Background(), uuid.New(), items)
	require.NoError(t, err)
	assert.Equal(t, items, ordered)
}

func TestSubjectVariants_ThreePerSegment(t *testing.T) {
	f := newFakeSources()
	e := newTestEngine(f)
	e.SetRand(rand.New(rand.NewSource(1)))

	segments := domain.SegmentList{
		domain.SegmentHighEngagement,
		domain.SegmentStockFocused,
		domain.SegmentMediumChurnRisk, // no strategy, skipped
	}
	variants := e.SubjectVariants("Daily Journal", segments)

	assert.Equal(t, "Daily Journal", variants.Control)
	assert.Len(t, variants.Variants, 6)
	assert.Equal(t, []string{
		"high_engagement_v1", "high_engagement_v2", "high_engagement_v3",
		"stock_focused_v1", "stock_focused_v2", "stock_focused_v3",
	}, sortedKeys(variants.Variants))

	for name, subject := range variants.Variants {
		assert.Contains(t, subject, "Daily Journal", "variant %s", name)
		assert.NotEqual(t, "Daily Journal", subject, "variant %s must modify the subject", name)
	}
}

func TestSubjectVariants_DeterministicWithSeed(t *testing.T) {
	f := newFakeSources()
	e := newTestEngine(f)
	segments := domain.SegmentList{domain.SegmentNewsFocused}

	e.SetRand(rand.New(rand.NewSource(42)))
	first := e.SubjectVariants("Base", segments)
	e.SetRand(rand.New(rand.NewSource(42)))
	second := e.SubjectVariants("Base", segments)

	assert.Equal(t, first, second)
}

func TestPredictContentPerformance_TypeAndKeywordBonuses(t *testing.T) {
	item := domain.ContentItem{
		ContentType: domain.ContentStockAnalysis,
		Title:       "Stock price target raised after earnings",
		Tags:        domain.TagList{"buy"},
	}

	predictions := PredictContentPerformance(item, []string{domain.SegmentStockFocused})
	require.Contains(t, predictions, domain.SegmentStockFocused)

	p := predictions[domain.SegmentStockFocused]
	assert.Equal(t, 15.0, p.Factors.ContentTypeMatch)
	// stock, price, target, buy, earnings match but the bonus caps at 20.
	assert.Equal(t, 20.0, p.Factors.KeywordRelevance)
	assert.Equal(t, 100.0, p.PredictedEngagement)
	assert.Equal(t, ConfidenceHigh, p.Confidence)
}

func TestPredictContentPerformance_LowEngagementRecommendations(t *testing.T) {
	item := domain.ContentItem{
		ContentType: domain.ContentMarketCommentary,
		Title:       "Deep macro dive",
	}

	predictions := PredictContentPerformance(item, []string{domain.SegmentLowEngagement})
	p := predictions[domain.SegmentLowEngagement]

	assert.Equal(t, 35.0, p.PredictedEngagement)
	assert.Equal(t, ConfidenceMedium, p.Confidence)

	joined := strings.Join(p.Recommendations, " | ")
	assert.Contains(t, joined, "Quick Read")
	assert.Contains(t, joined, "reading time")
}

func TestPredictContentPerformance_UnknownSegmentSkipped(t *testing.T) {
	predictions := PredictContentPerformance(domain.ContentItem{Title: "x"}, []string{domain.SegmentHighChurnRisk})
	assert.Empty(t, predictions)
}
