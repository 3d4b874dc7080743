package personalization

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// BaselineMetrics are the unpersonalized benchmark numbers a revenue
// projection is measured against. Zero value means "use industry defaults".
type BaselineMetrics struct {
	OpenRate                float64 `json:"open_rate"`
	ClickRate               float64 `json:"click_rate"`
	ChurnRate               float64 `json:"churn_rate"`
	AvgRevenuePerSubscriber float64 `json:"avg_revenue_per_subscriber"`
}

// DefaultBaseline returns industry-average metrics for paid financial
// newsletters.
func DefaultBaseline() BaselineMetrics {
	return BaselineMetrics{
		OpenRate:                22.0,
		ClickRate:               3.5,
		ChurnRate:               25.0,
		AvgRevenuePerSubscriber: 1200,
	}
}

// RevenueImprovements are the projected relative gains from personalization,
// all in percent.
type RevenueImprovements struct {
	OpenRateImprovement  float64 `json:"open_rate_improvement"`
	ClickRateImprovement float64 `json:"click_rate_improvement"`
	ChurnReduction       float64 `json:"churn_reduction"`
	EngagementScore      float64 `json:"engagement_score"`
}

// RevenueProjection carries the annual dollar figures derived from the
// improvements.
type RevenueProjection struct {
	BaselineAnnualRevenue float64 `json:"baseline_annual_revenue"`
	ImprovedAnnualRevenue float64 `json:"improved_annual_revenue"`
	AnnualRevenueLift     float64 `json:"annual_revenue_lift"`
	ROIPercentage         float64 `json:"roi_percentage"`
}

// RevenueImpact is the full per-subscriber revenue analysis.
type RevenueImpact struct {
	SubscriberID    uuid.UUID           `json:"subscriber_id"`
	BaselineMetrics BaselineMetrics     `json:"baseline_metrics"`
	Improvements    RevenueImprovements `json:"improvements"`
	RevenueImpact   RevenueProjection   `json:"revenue_impact"`
}

// RevenueImpact projects the annual revenue lift personalization produces for
// one subscriber, from the engagement and churn scores in its profile. A nil
// baseline uses DefaultBaseline. Returns domain.ErrNotFound when the
// subscriber has no profile yet.
func (e *Engine) RevenueImpact(ctx context.Context, subscriberID uuid.UUID, baseline *BaselineMetrics) (*RevenueImpact, error) {
	profile, err := e.profiles.Get(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	base := DefaultBaseline()
	if baseline != nil {
		base = *baseline
	}

	engagement := profile.EngagementScore
	churn := profile.ChurnRiskScore

	openImprovement := math.Min(engagement/50*15, 40)
	clickImprovement := math.Min(engagement/50*25, 60)
	churnReduction := math.Min((100-churn)/100*20, 30)

	retentionImprovement := churnReduction / 100
	engagementMultiplier := 1 + (openImprovement+clickImprovement)/200

	baseRevenue := base.AvgRevenuePerSubscriber
	improvedRevenue := baseRevenue * (1 + retentionImprovement) * engagementMultiplier
	lift := improvedRevenue - baseRevenue

	return &RevenueImpact{
		SubscriberID:    subscriberID,
		BaselineMetrics: base,
		Improvements: RevenueImprovements{
			OpenRateImprovement:  round1(openImprovement),
			ClickRateImprovement: round1(clickImprovement),
			ChurnReduction:       round1(churnReduction),
			EngagementScore:      round1(engagement),
		},
		RevenueImpact: RevenueProjection{
			BaselineAnnualRevenue: baseRevenue,
			ImprovedAnnualRevenue: round2(improvedRevenue),
			AnnualRevenueLift:     round2(lift),
			ROIPercentage:         round1(lift / baseRevenue * 100),
		},
	}, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
