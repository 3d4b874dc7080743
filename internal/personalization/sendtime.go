package personalization

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
)

// Confidence tiers for send-time recommendations.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// SendTimeRecommendation is the result of open-time histogram analysis for a
// single subscriber.
type SendTimeRecommendation struct {
	RecommendedTime    string      `json:"recommended_time"`
	Confidence         string      `json:"confidence"`
	PeakDay            string      `json:"peak_day,omitempty"`
	Analysis           string      `json:"analysis"`
	HourlyDistribution map[int]int `json:"hourly_distribution,omitempty"`
	ConfidenceScore    float64     `json:"confidence_score,omitempty"`
}

// OptimizeSendTime analyzes a subscriber's full open history and recommends
// the send hour with the strongest signal. Confidence reflects how
// concentrated opens are in the peak hour: above 40% of opens is high, above
// 25% is medium. Subscribers with no opens get the default time at low
// confidence.
func (e *Engine) OptimizeSendTime(ctx context.Context, subscriberID uuid.UUID) (*SendTimeRecommendation, error) {
	opens, err := e.events.Events(ctx, subscriberID, nil, domain.EventEmailOpen)
	if err != nil {
		return nil, fmt.Errorf("load open events: %w", err)
	}
	if len(opens) == 0 {
		return &SendTimeRecommendation{
			RecommendedTime: domain.DefaultSendTime,
			Confidence:      ConfidenceLow,
			Analysis:        "Insufficient data for optimization",
		}, nil
	}

	var hourCounts [24]int
	var weekdayCounts [7]int
	for _, ev := range opens {
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

	confidenceScore := float64(hourCounts[peakHour]) / float64(len(opens))
	confidence := ConfidenceLow
	switch {
	case confidenceScore > 0.4:
		confidence = ConfidenceHigh
	case confidenceScore > 0.25:
		confidence = ConfidenceMedium
	}

	distribution := make(map[int]int)
	for hour, n := range hourCounts {
		if n > 0 {
			distribution[hour] = n
		}
	}

	return &SendTimeRecommendation{
		RecommendedTime:    fmt.Sprintf("%02d:00", peakHour),
		Confidence:         confidence,
		PeakDay:            dayNames[peakDay],
		Analysis:           fmt.Sprintf("Peak engagement at %02d:00 on %ss", peakHour, dayNames[peakDay]),
		HourlyDistribution: distribution,
		ConfidenceScore:    round1(confidenceScore * 100),
	}, nil
}

// mondayIndex converts Go's Sunday-first weekday to a Monday-first index.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
