package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the engagement event kinds tracked per subscriber.
type EventType string

const (
	EventEmailOpen   EventType = "email_open"
	EventLinkClick   EventType = "link_click"
	EventContentView EventType = "content_view"
	EventUnsubscribe EventType = "unsubscribe"
)

// ValidEventType reports whether t is one of the tracked event kinds.
func ValidEventType(t EventType) bool {
	switch t {
	case EventEmailOpen, EventLinkClick, EventContentView, EventUnsubscribe:
		return true
	}
	return false
}

// JSON is a helper type for JSONB columns.
type JSON map[string]interface{}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}
	return json.Unmarshal(b, j)
}

// EngagementEvent is a single immutable interaction record. Events are
// append-only; the personalization engine only ever reads them.
type EngagementEvent struct {
	ID             uuid.UUID `json:"id" db:"id"`
	SubscriberID   uuid.UUID `json:"subscriber_id" db:"subscriber_id"`
	EventType      EventType `json:"event_type" db:"event_type"`
	EventData      JSON      `json:"event_data,omitempty" db:"event_data"`
	NewsletterID   string    `json:"newsletter_id,omitempty" db:"newsletter_id"`
	ContentSection string    `json:"content_section,omitempty" db:"content_section"`
	PlatformID     string    `json:"platform_id" db:"platform_id"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
}
