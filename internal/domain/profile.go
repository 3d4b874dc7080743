package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Behavioral segment labels. Every profile carries exactly one engagement
// label, exactly one churn label, and at most one content-focus label.
const (
	SegmentHighEngagement   = "high_engagement"
	SegmentMediumEngagement = "medium_engagement"
	SegmentLowEngagement    = "low_engagement"

	SegmentHighChurnRisk   = "high_churn_risk"
	SegmentMediumChurnRisk = "medium_churn_risk"
	SegmentLowChurnRisk    = "low_churn_risk"

	SegmentStockFocused  = "stock_focused"
	SegmentMarketFocused = "market_focused"
	SegmentNewsFocused   = "news_focused"
)

// DefaultSendTime is used when a subscriber has no recorded opens.
const DefaultSendTime = "09:00"

// PreferenceMap maps a content section name to its 0-100 affinity score.
// Stored as JSONB.
type PreferenceMap map[string]float64

// Value implements driver.Valuer.
func (p PreferenceMap) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *PreferenceMap) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}
	return json.Unmarshal(b, p)
}

// SegmentList is an ordered list of behavioral segment labels. Stored as JSONB.
type SegmentList []string

// Value implements driver.Valuer.
func (s SegmentList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *SegmentList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}
	return json.Unmarshal(b, s)
}

// Contains reports whether the list carries the given label.
func (s SegmentList) Contains(label string) bool {
	for _, v := range s {
		if v == label {
			return true
		}
	}
	return false
}

// SubscriberProfile is the derived analytics record for one subscriber.
// There is exactly one row per subscriber; every recomputation overwrites it.
type SubscriberProfile struct {
	SubscriberID       uuid.UUID     `json:"subscriber_id" db:"subscriber_id"`
	EngagementScore    float64       `json:"engagement_score" db:"engagement_score"`
	ContentPreferences PreferenceMap `json:"content_preferences" db:"content_preferences"`
	BehavioralSegments SegmentList   `json:"behavioral_segments" db:"behavioral_segments"`
	ChurnRiskScore     float64       `json:"churn_risk_score" db:"churn_risk_score"`
	OptimalSendTime    string        `json:"optimal_send_time" db:"optimal_send_time"`
	LastUpdated        time.Time     `json:"last_updated" db:"last_updated"`
}
