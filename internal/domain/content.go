package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Content types carried by newsletter sections.
const (
	ContentStockAnalysis       = "stock_analysis"
	ContentStockRecommendation = "stock_recommendation"
	ContentMarketCommentary    = "market_commentary"
	ContentNews                = "news"
)

// TagList is a JSONB-backed list of free-form content tags.
type TagList []string

// Value implements driver.Valuer.
func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner.
func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}
	return json.Unmarshal(b, t)
}

// ContentItem is one section of a newsletter issue. The personalization core
// treats items as caller-supplied presentation input; only section_name and
// content_type feed the ordering score.
type ContentItem struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	NewsletterID       string    `json:"newsletter_id" db:"newsletter_id"`
	SectionName        string    `json:"section_name" db:"section_name"`
	ContentType        string    `json:"content_type" db:"content_type"`
	Title              string    `json:"title,omitempty" db:"title"`
	Summary            string    `json:"summary,omitempty" db:"summary"`
	ContentText        string    `json:"content_text,omitempty" db:"content_text"`
	Tags               TagList   `json:"tags" db:"tags"`
	PerformanceMetrics JSON      `json:"performance_metrics,omitempty" db:"performance_metrics"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}
