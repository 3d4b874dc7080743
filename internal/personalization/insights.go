package personalization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/personalize-ai/internal/domain"
)

// AudienceSource provides the whole-audience reads the reporting operations
// need. The per-subscriber Engine interfaces stay narrow; aggregation gets
// its own surface.
type AudienceSource interface {
	AllSubscribers(ctx context.Context) ([]domain.Subscriber, error)
	EventsSince(ctx context.Context, since time.Time) ([]domain.EngagementEvent, error)
	AllContentItems(ctx context.Context) ([]domain.ContentItem, error)
}

// Reporter produces publisher-facing aggregate analytics on top of the
// per-subscriber engine.
type Reporter struct {
	engine   *Engine
	audience AudienceSource
}

// NewReporter creates a reporter sharing the engine's clock and profile
// store.
func NewReporter(engine *Engine, audience AudienceSource) *Reporter {
	return &Reporter{engine: engine, audience: audience}
}

// ChurnRiskDistribution buckets profiled subscribers by churn tier.
type ChurnRiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// DailyTrend is one 24-hour engagement bucket, newest windows anchored at
// report time.
type DailyTrend struct {
	Date      string  `json:"date"`
	Opens     int     `json:"opens"`
	Clicks    int     `json:"clicks"`
	OpenRate  float64 `json:"open_rate"`
	ClickRate float64 `json:"click_rate"`
}

// DashboardAnalytics is the publisher dashboard payload.
type DashboardAnalytics struct {
	TotalSubscribers      int                   `json:"total_subscribers"`
	OverallOpenRate       float64               `json:"overall_open_rate"`
	OverallClickRate      float64               `json:"overall_click_rate"`
	Segments              map[string]int        `json:"segments"`
	ChurnRiskDistribution ChurnRiskDistribution `json:"churn_risk_distribution"`
	DailyTrends           []DailyTrend          `json:"daily_trends"`
	TotalEvents           int                   `json:"total_events"`
}

// DashboardAnalytics aggregates audience-wide engagement over the trailing
// window. Open and click rates assume one email sent per subscriber per day.
// Subscribers without a profile count toward totals but not toward segment
// or churn breakdowns.
func (r *Reporter) DashboardAnalytics(ctx context.Context, days int) (*DashboardAnalytics, error) {
	if days <= 0 {
		days = DefaultScoringWindowDays
	}
	now := r.engine.now()
	since := now.Add(-time.Duration(days) * 24 * time.Hour)

	subscribers, err := r.audience.AllSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	events, err := r.audience.EventsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	totalSubscribers := len(subscribers)
	totalOpens, totalClicks := 0, 0
	for _, ev := range events {
		switch ev.EventType {
		case domain.EventEmailOpen:
			totalOpens++
		case domain.EventLinkClick:
			totalClicks++
		}
	}

	totalEmailsSent := float64(totalSubscribers * days)
	analytics := &DashboardAnalytics{
		TotalSubscribers: totalSubscribers,
		Segments:         make(map[string]int),
		TotalEvents:      len(events),
	}
	if totalEmailsSent > 0 {
		analytics.OverallOpenRate = round2(float64(totalOpens) / totalEmailsSent * 100)
		analytics.OverallClickRate = round2(float64(totalClicks) / totalEmailsSent * 100)
	}

	for _, sub := range subscribers {
		profile, err := r.engine.profiles.Get(ctx, sub.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load profile: %w", err)
		}
		for _, segment := range profile.BehavioralSegments {
			analytics.Segments[segment]++
		}
		switch {
		case profile.ChurnRiskScore >= tierHighThreshold:
			analytics.ChurnRiskDistribution.High++
		case profile.ChurnRiskScore >= tierMediumThreshold:
			analytics.ChurnRiskDistribution.Medium++
		default:
			analytics.ChurnRiskDistribution.Low++
		}
	}

	analytics.DailyTrends = dailyTrends(events, now, totalSubscribers)
	return analytics, nil
}

// dailyTrends buckets opens and clicks into the seven trailing 24-hour
// windows, oldest first.
func dailyTrends(events []domain.EngagementEvent, now time.Time, totalSubscribers int) []DailyTrend {
	trends := make([]DailyTrend, 0, 7)
	for i := 6; i >= 0; i-- {
		dayStart := now.Add(-time.Duration(i+1) * 24 * time.Hour)
		dayEnd := dayStart.Add(24 * time.Hour)

		opens, clicks := 0, 0
		for _, ev := range events {
			if ev.Timestamp.Before(dayStart) || !ev.Timestamp.Before(dayEnd) {
				continue
			}
			switch ev.EventType {
			case domain.EventEmailOpen:
				opens++
			case domain.EventLinkClick:
				clicks++
			}
		}

		trend := DailyTrend{
			Date:   dayStart.Format("2006-01-02"),
			Opens:  opens,
			Clicks: clicks,
		}
		if totalSubscribers > 0 {
			trend.OpenRate = float64(opens) / float64(totalSubscribers) * 100
			trend.ClickRate = float64(clicks) / float64(totalSubscribers) * 100
		}
		trends = append(trends, trend)
	}
	return trends
}

// SegmentStats accumulates engagement per behavioral segment.
type SegmentStats struct {
	Count           int     `json:"count"`
	AvgEngagement   float64 `json:"avg_engagement"`
	TotalEngagement float64 `json:"total_engagement"`
}

// Insight is one finding surfaced to the publisher.
type Insight struct {
	Type    string `json:"type"`
	Insight string `json:"insight"`
	Impact  string `json:"impact"`
	Data    any    `json:"data,omitempty"`
}

// Recommendation is one suggested action with its expected payoff.
type Recommendation struct {
	Category       string `json:"category"`
	Recommendation string `json:"recommendation"`
	ExpectedImpact string `json:"expected_impact"`
	Priority       string `json:"priority"`
}

// Opportunity is a projected optimization the publisher has not captured yet.
type Opportunity struct {
	Type           string `json:"type"`
	Opportunity    string `json:"opportunity"`
	Implementation string `json:"implementation"`
	Timeline       string `json:"timeline"`
	Confidence     string `json:"confidence"`
}

// PerformanceAnalysis is the raw numbers behind the insights.
type PerformanceAnalysis struct {
	SegmentPerformance      map[string]*SegmentStats `json:"segment_performance"`
	TotalRevenueOpportunity float64                  `json:"total_revenue_opportunity"`
	EngagementTrends        map[int]int              `json:"engagement_trends"`
	ContentPerformance      map[string]float64       `json:"content_performance"`
}

// PublisherInsights is the full intelligence report.
type PublisherInsights struct {
	Period                    string              `json:"period"`
	GeneratedAt               time.Time           `json:"generated_at"`
	KeyInsights               []Insight           `json:"key_insights"`
	Recommendations           []Recommendation    `json:"recommendations"`
	PerformanceAnalysis       PerformanceAnalysis `json:"performance_analysis"`
	OptimizationOpportunities []Opportunity       `json:"optimization_opportunities"`
}

// PublisherInsights builds the intelligence report: engagement timing peaks,
// segment performance, best-performing content type and the aggregate revenue
// opportunity across the audience.
func (r *Reporter) PublisherInsights(ctx context.Context, days int) (*PublisherInsights, error) {
	if days <= 0 {
		days = DefaultScoringWindowDays
	}
	now := r.engine.now()

	subscribers, err := r.audience.AllSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	events, err := r.audience.EventsSince(ctx, now.Add(-time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	contentItems, err := r.audience.AllContentItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}

	insights := &PublisherInsights{
		Period:          fmt.Sprintf("Last %d days", days),
		GeneratedAt:     now.UTC(),
		KeyInsights:     []Insight{},
		Recommendations: []Recommendation{},
		PerformanceAnalysis: PerformanceAnalysis{
			EngagementTrends:   map[int]int{},
			ContentPerformance: map[string]float64{},
		},
		OptimizationOpportunities: []Opportunity{},
	}

	if len(events) > 0 {
		r.addTimingInsight(insights, events)
	}

	segmentPerformance, err := r.segmentPerformance(ctx, subscribers)
	if err != nil {
		return nil, err
	}
	insights.PerformanceAnalysis.SegmentPerformance = segmentPerformance
	if len(segmentPerformance) > 0 {
		addSegmentInsight(insights, segmentPerformance)
	}

	if perf := contentTypePerformance(contentItems); len(perf) > 0 {
		insights.PerformanceAnalysis.ContentPerformance = perf
		addContentInsight(insights, perf)
	}

	totalLift := 0.0
	for _, sub := range subscribers {
		impact, err := r.engine.RevenueImpact(ctx, sub.ID, nil)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		totalLift += impact.RevenueImpact.AnnualRevenueLift
	}
	insights.PerformanceAnalysis.TotalRevenueOpportunity = round2(totalLift)
	if totalLift > 0 {
		insights.OptimizationOpportunities = append(insights.OptimizationOpportunities, Opportunity{
			Type:           "revenue_optimization",
			Opportunity:    fmt.Sprintf("Personalization could generate $%.0f additional annual revenue", totalLift),
			Implementation: "Advanced AI personalization across all subscribers",
			Timeline:       "3-6 months",
			Confidence:     ConfidenceHigh,
		})
	}

	return insights, nil
}

func (r *Reporter) addTimingInsight(insights *PublisherInsights, events []domain.EngagementEvent) {
	var hourCounts [24]int
	var weekdayCounts [7]int
	for _, ev := range events {
		hourCounts[ev.Timestamp.Hour()]++
		weekdayCounts[mondayIndex(ev.Timestamp.Weekday())]++
	}

	peakHour := 0
	for hour := 1; hour < 24; hour++ {
		if hourCounts[hour] > hourCounts[peakHour] {
			peakHour = hour
		}
	}
	peakDay := 0
	for day := 1; day < 7; day++ {
		if weekdayCounts[day] > weekdayCounts[peakDay] {
			peakDay = day
		}
	}

	trends := insights.PerformanceAnalysis.EngagementTrends
	for hour, n := range hourCounts {
		if n > 0 {
			trends[hour] = n
		}
	}

	insights.KeyInsights = append(insights.KeyInsights, Insight{
		Type:    "timing",
		Insight: fmt.Sprintf("Peak engagement occurs at %02d:00 on %ss", peakHour, dayNames[peakDay]),
		Impact:  "high",
		Data: map[string]any{
			"peak_hour":           peakHour,
			"peak_day":            dayNames[peakDay],
			"hourly_distribution": trends,
		},
	})
	insights.Recommendations = append(insights.Recommendations, Recommendation{
		Category:       "send_timing",
		Recommendation: fmt.Sprintf("Schedule newsletters for %02d:00 on %ss for maximum engagement", peakHour, dayNames[peakDay]),
		ExpectedImpact: "+15-25% open rate improvement",
		Priority:       "high",
	})
}

func (r *Reporter) segmentPerformance(ctx context.Context, subscribers []domain.Subscriber) (map[string]*SegmentStats, error) {
	performance := make(map[string]*SegmentStats)
	for _, sub := range subscribers {
		profile, err := r.engine.profiles.Get(ctx, sub.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("load profile: %w", err)
		}
		for _, segment := range profile.BehavioralSegments {
			stats, ok := performance[segment]
			if !ok {
				stats = &SegmentStats{}
				performance[segment] = stats
			}
			stats.Count++
			stats.TotalEngagement += profile.EngagementScore
		}
	}
	for _, stats := range performance {
		if stats.Count > 0 {
			stats.AvgEngagement = stats.TotalEngagement / float64(stats.Count)
		}
	}
	return performance, nil
}

func addSegmentInsight(insights *PublisherInsights, performance map[string]*SegmentStats) {
	top := ""
	for segment, stats := range performance {
		if top == "" || stats.AvgEngagement > performance[top].AvgEngagement ||
			(stats.AvgEngagement == performance[top].AvgEngagement && segment < top) {
			top = segment
		}
	}

	insights.KeyInsights = append(insights.KeyInsights, Insight{
		Type:    "segmentation",
		Insight: fmt.Sprintf("'%s' segment shows highest engagement (%.1f%%)", titleCase(top), performance[top].AvgEngagement),
		Impact:  "high",
		Data:    performance,
	})
	insights.Recommendations = append(insights.Recommendations, Recommendation{
		Category:       "content_strategy",
		Recommendation: fmt.Sprintf("Create more content targeting '%s' preferences", spaceCase(top)),
		ExpectedImpact: "+20-30% engagement for targeted content",
		Priority:       "high",
	})
}

// contentTypePerformance averages the stored engagement_rate metric per
// content type; items without metrics are skipped.
func contentTypePerformance(items []domain.ContentItem) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, item := range items {
		rate, ok := engagementRate(item.PerformanceMetrics)
		if !ok {
			continue
		}
		sums[item.ContentType] += rate
		counts[item.ContentType]++
	}

	averages := make(map[string]float64, len(sums))
	for contentType, sum := range sums {
		averages[contentType] = sum / float64(counts[contentType])
	}
	return averages
}

func engagementRate(metrics domain.JSON) (float64, bool) {
	if metrics == nil {
		return 0, false
	}
	v, ok := metrics["engagement_rate"]
	if !ok {
		return 0, false
	}
	rate, ok := v.(float64)
	return rate, ok
}

func addContentInsight(insights *PublisherInsights, performance map[string]float64) {
	best := ""
	for contentType, rate := range performance {
		if best == "" || rate > performance[best] || (rate == performance[best] && contentType < best) {
			best = contentType
		}
	}
	insights.KeyInsights = append(insights.KeyInsights, Insight{
		Type:    "content_performance",
		Insight: fmt.Sprintf("'%s' content performs best (%.1f%% engagement)", titleCase(best), performance[best]),
		Impact:  "medium",
		Data:    performance,
	})
}

// titleCase turns "stock_focused" into "Stock Focused".
func titleCase(s string) string {
	out := []rune(spaceCase(s))
	upperNext := true
	for i, r := range out {
		if upperNext && r >= 'a' && r <= 'z' {
			out[i] = r - 'a' + 'A'
		}
		upperNext = r == ' '
	}
	return string(out)
}

func spaceCase(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r == '_' {
			out[i] = ' '
		}
	}
	return string(out)
}
