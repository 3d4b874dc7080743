package platform

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ignite/personalize-ai/internal/domain"
)

// Salesforce lead-scoring parameters.
const (
	sfBaseEngagement    = 50.0
	sfBaselineOpenRate  = 0.25
	sfBaselineClickRate = 0.03

	sfOpportunityThreshold = 80.0
	sfBaseOpportunityValue = 10000.0
)

var sfTierMultiplier = map[string]float64{
	domain.TierPremium: 1.3,
	"standard":         1.1,
	domain.TierBasic:   0.9,
}

var sfSegmentBonus = map[string]float64{
	domain.SegmentHighEngagement: 20,
	domain.SegmentStockFocused:   15,
	domain.SegmentMarketFocused:  10,
	domain.SegmentNewsFocused:    5,
	domain.SegmentLowEngagement:  -15,
}

// SalesforceClient is a mock CRM integration. It computes real lead scores
// from subscriber data but fabricates the Salesforce side of every exchange.
type SalesforceClient struct {
	instanceURL string
	now         func() time.Time
}

// NewSalesforceClient creates a client against the demo instance.
func NewSalesforceClient(instanceURL string) *SalesforceClient {
	if instanceURL == "" {
		instanceURL = "https://demo.salesforce.com"
	}
	return &SalesforceClient{instanceURL: instanceURL, now: time.Now}
}

// SetClock overrides the client's time source, for tests.
func (c *SalesforceClient) SetClock(now func() time.Time) {
	c.now = now
}

// SalesforceAuth is the OAuth hand-shake result.
type SalesforceAuth struct {
	AccessToken   string `json:"access_token"`
	InstanceURL   string `json:"instance_url"`
	TokenType     string `json:"token_type"`
	ExpiresIn     int    `json:"expires_in"`
	Scope         string `json:"scope"`
	Authenticated bool   `json:"authenticated"`
	DemoMode      bool   `json:"demo_mode"`
}

// Authenticate performs the mock OAuth exchange. Credentials are accepted
// unconditionally in demo mode.
func (c *SalesforceClient) Authenticate(clientID, clientSecret, username, password string) *SalesforceAuth {
	return &SalesforceAuth{
		AccessToken:   "demo_access_token_12345",
		InstanceURL:   c.instanceURL,
		TokenType:     "Bearer",
		ExpiresIn:     3600,
		Scope:         "full",
		Authenticated: true,
		DemoMode:      true,
	}
}

// SyncInput carries the subscriber fields that feed CRM scoring.
type SyncInput struct {
	SubscriberID      string    `json:"subscriber_id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	SubscriptionTier  string    `json:"subscription_tier"`
	Segment           string    `json:"segment"`
	ChurnRisk         float64   `json:"churn_risk"` // 0-1 fraction
	SignupDate        time.Time `json:"signup_date"`
	OpenRate          float64   `json:"open_rate"`
	ClickRate         float64   `json:"click_rate"`
	HasMetrics        bool      `json:"-"`
	PreviousLeadScore float64   `json:"previous_lead_score"`
}

// SyncInputFrom builds a SyncInput from a subscriber and its profile. A nil
// profile leaves segment and churn fields zeroed.
func SyncInputFrom(sub *domain.Subscriber, profile *domain.SubscriberProfile) SyncInput {
	in := SyncInput{
		SubscriberID:     sub.ID.String(),
		Email:            sub.Email,
		FirstName:        sub.FirstName,
		LastName:         sub.LastName,
		SubscriptionTier: sub.SubscriptionTier,
		SignupDate:       sub.SignupDate,
	}
	if profile != nil {
		in.ChurnRisk = profile.ChurnRiskScore / 100
		for _, segment := range profile.BehavioralSegments {
			if _, ok := sfSegmentBonus[segment]; ok {
				in.Segment = segment
				break
			}
		}
	}
	return in
}

// ContactSync is the result of pushing one subscriber into the CRM.
type ContactSync struct {
	Success         bool                   `json:"success"`
	ContactID       string                 `json:"contact_id"`
	LeadScore       float64                `json:"lead_score"`
	EngagementScore float64                `json:"engagement_score"`
	SyncTimestamp   time.Time              `json:"sync_timestamp"`
	DemoMode        bool                   `json:"demo_mode"`
	ContactFields   map[string]interface{} `json:"contact_data"`
}

// SyncContact scores the subscriber and simulates the contact upsert.
func (c *SalesforceClient) SyncContact(in SyncInput) *ContactSync {
	engagement := c.engagementScore(in)
	lead := c.leadScore(in, engagement)
	now := c.now().UTC()

	return &ContactSync{
		Success:         true,
		ContactID:       contactID(in.SubscriberID),
		LeadScore:       lead,
		EngagementScore: engagement,
		SyncTimestamp:   now,
		DemoMode:        true,
		ContactFields: map[string]interface{}{
			"FirstName":                          in.FirstName,
			"LastName":                           in.LastName,
			"Email":                              in.Email,
			"PersonalizeAI_Engagement_Score__c":  engagement,
			"PersonalizeAI_Lead_Score__c":        lead,
			"PersonalizeAI_Subscriber_ID__c":     in.SubscriberID,
			"PersonalizeAI_Segment__c":           in.Segment,
			"PersonalizeAI_Churn_Risk__c":        in.ChurnRisk,
			"PersonalizeAI_Last_Sync__c":         now.Format(time.RFC3339),
			"LeadSource":                         "PersonalizeAI Newsletter",
		},
	}
}

// Contact is a CRM contact record.
type Contact struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	EngagementScore  float64   `json:"engagement_score"`
	LeadScore        float64   `json:"lead_score"`
	Segment          string    `json:"segment"`
	LeadSource       string    `json:"lead_source"`
	CreatedDate      time.Time `json:"created_date"`
	LastModifiedDate time.Time `json:"last_modified_date"`
	DemoMode         bool      `json:"demo_mode"`
}

// ContactByEmail fabricates the CRM-side contact for an email address,
// deriving names from the local part the way the demo instance does.
func (c *SalesforceClient) ContactByEmail(email string) *Contact {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	parts := strings.Split(local, ".")
	first := titleWord(parts[0])
	last := titleWord(parts[len(parts)-1])

	now := c.now().UTC()
	return &Contact{
		ID:               contactID(local),
		FirstName:        first,
		LastName:         last,
		Email:            email,
		EngagementScore:  75.5,
		LeadScore:        82.3,
		Segment:          domain.SegmentHighEngagement,
		LeadSource:       "PersonalizeAI Newsletter",
		CreatedDate:      now.Add(-30 * 24 * time.Hour),
		LastModifiedDate: now,
		DemoMode:         true,
	}
}

// LeadScoreUpdate is one entry in a bulk rescoring result.
type LeadScoreUpdate struct {
	ContactID       string    `json:"contact_id"`
	Email           string    `json:"email"`
	OldLeadScore    float64   `json:"old_lead_score"`
	NewLeadScore    float64   `json:"new_lead_score"`
	EngagementScore float64   `json:"engagement_score"`
	ScoreChange     float64   `json:"score_change"`
	LastUpdated     time.Time `json:"last_updated"`
}

// BulkUpdateResult summarizes a bulk lead rescoring.
type BulkUpdateResult struct {
	Success                 bool              `json:"success"`
	UpdatedCount            int               `json:"updated_count"`
	Contacts                []LeadScoreUpdate `json:"contacts"`
	AverageScoreImprovement float64           `json:"average_score_improvement"`
	DemoMode                bool              `json:"demo_mode"`
}

// UpdateLeadScores rescores a batch of subscribers. A zero
// PreviousLeadScore is treated as the 50-point default.
func (c *SalesforceClient) UpdateLeadScores(updates []SyncInput) *BulkUpdateResult {
	result := &BulkUpdateResult{Success: true, DemoMode: true}
	now := c.now().UTC()

	totalChange := 0.0
	for _, in := range updates {
		previous := in.PreviousLeadScore
		if previous == 0 {
			previous = 50
		}
		engagement := c.engagementScore(in)
		lead := c.leadScore(in, engagement)

		result.Contacts = append(result.Contacts, LeadScoreUpdate{
			ContactID:       contactID(in.SubscriberID),
			Email:           in.Email,
			OldLeadScore:    previous,
			NewLeadScore:    lead,
			EngagementScore: engagement,
			ScoreChange:     lead - previous,
			LastUpdated:     now,
		})
		totalChange += lead - previous
	}

	result.UpdatedCount = len(result.Contacts)
	if result.UpdatedCount > 0 {
		result.AverageScoreImprovement = totalChange / float64(result.UpdatedCount)
	}
	return result
}

// Opportunity is the result of attempting opportunity creation for a highly
// engaged subscriber.
type Opportunity struct {
	Success        bool                   `json:"success"`
	Reason         string                 `json:"reason,omitempty"`
	OpportunityID  string                 `json:"opportunity_id,omitempty"`
	EstimatedValue float64                `json:"estimated_value,omitempty"`
	Fields         map[string]interface{} `json:"opportunity_data,omitempty"`
	DemoMode       bool                   `json:"demo_mode"`
}

// CreateOpportunity opens a pipeline opportunity when the subscriber's
// engagement clears the threshold; below it the call reports why it did not.
func (c *SalesforceClient) CreateOpportunity(in SyncInput) *Opportunity {
	engagement := c.engagementScore(in)
	if engagement < sfOpportunityThreshold {
		return &Opportunity{
			Success:  false,
			Reason:   "Engagement score too low for opportunity creation",
			DemoMode: true,
		}
	}

	value := c.opportunityValue(in, engagement)
	now := c.now().UTC()
	return &Opportunity{
		Success:        true,
		OpportunityID:  fmt.Sprintf("006%s0000DEF456", shortID(in.SubscriberID)),
		EstimatedValue: value,
		DemoMode:       true,
		Fields: map[string]interface{}{
			"Name":                              fmt.Sprintf("PersonalizeAI Lead - %s %s", in.FirstName, in.LastName),
			"StageName":                         "Prospecting",
			"CloseDate":                         now.Add(30 * 24 * time.Hour).Format("2006-01-02"),
			"Amount":                            value,
			"LeadSource":                        "PersonalizeAI Newsletter Engagement",
			"PersonalizeAI_Engagement_Score__c": engagement,
			"Description":                       fmt.Sprintf("High-engagement newsletter subscriber with %.1f%% engagement score", engagement),
		},
	}
}

// engagementScore derives a CRM-side engagement estimate from tier, observed
// rates and segment.
func (c *SalesforceClient) engagementScore(in SyncInput) float64 {
	multiplier, ok := sfTierMultiplier[in.SubscriptionTier]
	if !ok {
		multiplier = 1.0
	}
	score := sfBaseEngagement * multiplier

	if in.HasMetrics {
		score += (in.OpenRate - sfBaselineOpenRate) * 100
		score += (in.ClickRate - sfBaselineClickRate) * 500
	}
	score += sfSegmentBonus[in.Segment]

	return math.Max(0, math.Min(100, score))
}

// leadScore converts engagement into a conversion likelihood, rewarding
// premium tier and fresh signups, penalizing churn risk.
func (c *SalesforceClient) leadScore(in SyncInput, engagement float64) float64 {
	score := engagement * 0.8

	if in.SubscriptionTier == domain.TierPremium {
		score += 10
	}
	if !in.SignupDate.IsZero() {
		days := int(c.now().Sub(in.SignupDate).Hours() / 24)
		if days < 30 {
			score += 15
		} else if days > 365 {
			score -= 5
		}
	}
	score -= in.ChurnRisk * 20

	return math.Max(0, math.Min(100, score))
}

func (c *SalesforceClient) opportunityValue(in SyncInput, engagement float64) float64 {
	multiplier := 1.0
	switch in.SubscriptionTier {
	case domain.TierPremium:
		multiplier = 2.5
	case "standard":
		multiplier = 1.5
	}
	value := sfBaseOpportunityValue * multiplier

	switch {
	case engagement > 90:
		value *= 1.5
	case engagement > 80:
		value *= 1.3
	case engagement < 50:
		value *= 0.7
	}
	return math.Round(value*100) / 100
}

func contactID(seed string) string {
	return fmt.Sprintf("003%s0000ABC123", shortID(seed))
}

// shortID keeps contact IDs readable for UUID-length seeds.
func shortID(seed string) string {
	if len(seed) > 8 {
		return seed[:8]
	}
	return seed
}

func titleWord(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
