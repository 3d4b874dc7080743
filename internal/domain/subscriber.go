package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a subscriber (or one of its derived records)
// does not exist. Churn estimation and profile rebuilds propagate it;
// presentation-layer personalization degrades to a no-op instead.
var ErrNotFound = errors.New("subscriber not found")

// Subscription tiers.
const (
	TierBasic   = "basic"
	TierPremium = "premium"
)

// Subscriber represents a single newsletter recipient synced from an email
// platform.
type Subscriber struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	Email                string    `json:"email" db:"email"`
	FirstName            string    `json:"first_name,omitempty" db:"first_name"`
	LastName             string    `json:"last_name,omitempty" db:"last_name"`
	SignupDate           time.Time `json:"signup_date" db:"signup_date"`
	PlatformID           string    `json:"platform_id" db:"platform_id"`
	PlatformSubscriberID string    `json:"platform_subscriber_id" db:"platform_subscriber_id"`
	SubscriptionTier     string    `json:"subscription_tier" db:"subscription_tier"`
	Preferences          JSON      `json:"preferences,omitempty" db:"preferences"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}
