package personalization

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/personalize-ai/internal/domain"
)

func seedAudience(f *fakeSources) (engaged, lapsed uuid.UUID) {
	engaged = uuid.New()
	lapsed = uuid.New()

	f.subscribers = []domain.Subscriber{
		{ID: engaged, Email: "engaged@example.com"},
		{ID: lapsed, Email: "lapsed@example.com"},
	}
	f.profiles[engaged] = &domain.SubscriberProfile{
		SubscriberID:       engaged,
		EngagementScore:    80,
		ChurnRiskScore:     20,
		BehavioralSegments: domain.SegmentList{domain.SegmentHighEngagement, domain.SegmentLowChurnRisk, domain.SegmentStockFocused},
	}
	f.profiles[lapsed] = &domain.SubscriberProfile{
		SubscriberID:       lapsed,
		EngagementScore:    15,
		ChurnRiskScore:     85,
		BehavioralSegments: domain.SegmentList{domain.SegmentLowEngagement, domain.SegmentHighChurnRisk},
	}

	// Opens clustered at 09:00 two days ago, one click yesterday.
	opensAt := testNow.Add(-48 * time.Hour).Truncate(time.Hour).Add(-3 * time.Hour)
	f.addEvents(engaged, domain.EventEmailOpen, opensAt, 4)
	f.addEvents(engaged, domain.EventLinkClick, testNow.Add(-24*time.Hour), 1)
	f.addEvents(lapsed, domain.EventEmailOpen, testNow.Add(-20*24*time.Hour), 1)
	return engaged, lapsed
}

func TestDashboardAnalytics_Aggregates(t *testing.T) {
	f := newFakeSources()
	e := newTestEngine(f)
	r := NewReporter(e, f)
	seedAudience(f)

	analytics, err := r.DashboardAnalytics(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 2, analytics.TotalSubscribers)
	assert.Equal(t, 6, analytics.TotalEvents)

	// 5 opens over 2 subscribers * 30 days of assumed sends.
	assert.InDelta(t, 8.33, analytics.OverallOpenRate, 0.01)
	assert.InDelta(t, 1.67, analytics.OverallClickRate, 0.01)

	assert.Equal(t, 1, analytics.Segments[domain.SegmentHighEngagement])
	assert.Equal(t, 1, analytics.Segments[domain.SegmentLowEngagement])
	assert.Equal(t, 1, analytics.Segments[domain.SegmentStockFocused])

	assert.Equal(t, 1, analytics.ChurnRiskDistribution.Low)
	assert.Equal(t, 0, analytics.ChurnRiskDistribution.Medium)
	assert.Equal(t, 1, analytics.ChurnRiskDistribution.High)

	require.Len(t, analytics.DailyTrends, 7)
	// Oldest window first; the open cluster lands in the third-to-last bucket.
	assert.Equal(t, 4, analytics.DailyTrends[4].Opens)
	assert.Equal(t, 1, analytics.DailyTrends[6].Clicks)
	assert.InDelta(t, 200.0, analytics.DailyTrends[4].OpenRate, 0.01)
}

func TestDashboardAnalytics_EmptyAudience(t *testing.T) {
	f := newFakeSources()
	r := NewReporter(newTestEngine(f), f)

	analytics, err := r.DashboardAnalytics(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, analytics.TotalSubscribers)
	assert.Equal(t, 0.0, analytics.OverallOpenRate)
	assert.Len(t, analytics.DailyTrends, 7)
}

func TestPublisherInsights_FullReport(t *testing.T) {
	f := newFakeSources()
	e := newTestEngine(f)
	r := NewReporter(e, f)
	seedAudience(f)

	f.content = []domain.ContentItem{
		{ContentType: domain.ContentStockAnalysis, PerformanceMetrics: domain.JSON{"engagement_rate": 72.0}},
		{ContentType: domain.ContentStockAnalysis, PerformanceMetrics: domain.JSON{"engagement_rate": 68.0}},
		{ContentType: domain.ContentNews, PerformanceMetrics: domain.JSON{"engagement_rate": 40.0}},
		{ContentType: domain.ContentMarketCommentary}, // no metrics, skipped
	}

	insights, err := r.PublisherInsights(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, "Last 30 days", insights.Period)
	assert.Equal(t, testNow, insights.GeneratedAt)

	types := make(map[string]Insight)
	for _, in := range insights.KeyInsights {
		types[in.Type] = in
	}
	require.Contains(t, types, "timing")
	require.Contains(t, types, "segmentation")
	require.Contains(t, types, "content_performance")

	assert.Contains(t, types["timing"].Insight, "09:00")
	assert.Contains(t, types["segmentation"].Insight, "High Engagement")
	assert.Contains(t, types["content_performance"].Insight, "Stock Analysis")
	assert.InDelta(t, 70.0, insights.PerformanceAnalysis.ContentPerformance[domain.ContentStockAnalysis], 0.01)

	perf := insights.PerformanceAnalysis.SegmentPerformance
	require.Contains(t, perf, domain.SegmentHighEngagement)
	assert.Equal(t, 1, perf[domain.SegmentHighEngagement].Count)
	assert.InDelta(t, 80.0, perf[domain.SegmentHighEngagement].AvgEngagement, 0.01)

	assert.Greater(t, insights.PerformanceAnalysis.TotalRevenueOpportunity, 0.0)
	require.Len(t, insights.OptimizationOpportunities, 1)
	assert.Equal(t, "revenue_optimization", insights.OptimizationOpportunities[0].Type)

	var categories []string
	for _, rec := range insights.Recommendations {
		categories = append(categories, rec.Category)
	}
	assert.Contains(t, categories, "send_timing")
	assert.Contains(t, categories, "content_strategy")
}

func TestPublisherInsights_EmptyData(t *testing.T) {
	f := newFakeSources()
	r := NewReporter(newTestEngine(f), f)

	insights, err := r.PublisherInsights(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, insights.KeyInsights)
	assert.Empty(t, insights.Recommendations)
	assert.Empty(t, insights.OptimizationOpportunities)
	assert.Equal(t, 0.0, insights.PerformanceAnalysis.TotalRevenueOpportunity)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Stock Focused", titleCase("stock_focused"))
	assert.Equal(t, "High Engagement", titleCase("high_engagement"))
	assert.Equal(t, "News", titleCase("news"))
}
