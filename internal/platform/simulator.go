// Package platform provides the in-process integrations PersonalizeAI demos
// against: canned email-platform responses (Mailchimp, ConvertKit, SendGrid)
// and a mock Salesforce CRM with lead scoring. Nothing here performs network
// calls; responses mimic the real APIs closely enough to drive the dashboard.
package platform

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// Platform names accepted by the simulator.
const (
	PlatformMailchimp  = "mailchimp"
	PlatformConvertKit = "convertkit"
	PlatformSendGrid   = "sendgrid"
)

// Response is a simulated platform API payload.
type Response map[string]interface{}

// Simulator serves canned email-platform responses with randomized
// processing-time fields on the mutating actions.
type Simulator struct {
	rng *rand.Rand
}

// NewSimulator creates a simulator with time-seeded randomness.
func NewSimulator() *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// SetRand overrides the randomness source, for reproducible responses.
func (s *Simulator) SetRand(rng *rand.Rand) {
	s.rng = rng
}

var platformResponses = map[string]map[string]Response{
	PlatformMailchimp: {
		"authenticate": {
			"status":       "success",
			"access_token": "mc_demo_token_12345",
			"server":       "us19",
			"account_name": "Porter & Company Research",
		},
		"get_lists": {
			"status": "success",
			"lists": []Response{
				{
					"id":           "abc123def",
					"name":         "Daily Journal Subscribers",
					"member_count": 15420,
					"date_created": "2023-01-15T10:30:00Z",
				},
				{
					"id":           "xyz789ghi",
					"name":         "Premium Members",
					"member_count": 3280,
					"date_created": "2023-02-01T14:20:00Z",
				},
			},
		},
		"sync_subscribers": {
			"status":              "success",
			"synced_count":        18700,
			"new_subscribers":     45,
			"updated_subscribers": 123,
			"sync_time":           "2025-08-15T17:30:00Z",
		},
		"send_campaign": {
			"status":                "success",
			"campaign_id":           "camp_demo_001",
			"recipients":            15420,
			"personalized_subjects": 8934,
			"estimated_delivery":    "2025-08-15T18:00:00Z",
		},
	},
	PlatformConvertKit: {
		"authenticate": {
			"status":       "success",
			"api_key":      "ck_demo_key_67890",
			"account_name": "Porter Research",
		},
		"get_forms": {
			"status": "success",
			"forms": []Response{
				{
					"id":          "form_001",
					"name":        "Newsletter Signup",
					"subscribers": 8950,
					"created_at":  "2023-03-10T09:15:00Z",
				},
			},
		},
		"sync_subscribers": {
			"status":              "success",
			"synced_count":        8950,
			"new_subscribers":     23,
			"updated_subscribers": 67,
			"sync_time":           "2025-08-15T17:30:00Z",
		},
	},
	PlatformSendGrid: {
		"authenticate": {
			"status":       "success",
			"api_key":      "sg_demo_key_54321",
			"account_name": "Porter & Co Communications",
		},
		"get_contacts": {
			"status":          "success",
			"total_contacts":  12340,
			"active_contacts": 11890,
			"last_updated":    "2025-08-15T16:45:00Z",
		},
		"send_email": {
			"status":             "success",
			"message_id":         "sg_msg_demo_789",
			"recipients":         11890,
			"personalized_count": 7234,
			"scheduled_time":     "2025-08-15T18:00:00Z",
		},
	},
}

// Simulate returns the canned response for a platform action. Sync and send
// actions carry a randomized processing_time_ms to look like real round
// trips. Unknown platform/action pairs return an error.
func (s *Simulator) Simulate(platform, action string) (Response, error) {
	actions, ok := platformResponses[platform]
	if !ok {
		return nil, fmt.Errorf("unsupported action %q for platform %q", action, platform)
	}
	canned, ok := actions[action]
	if !ok {
		return nil, fmt.Errorf("unsupported action %q for platform %q", action, platform)
	}

	response := make(Response, len(canned)+1)
	for k, v := range canned {
		response[k] = v
	}

	switch action {
	case "sync_subscribers":
		response["processing_time_ms"] = 1200 + s.rng.Intn(2301)
	case "send_campaign", "send_email":
		response["processing_time_ms"] = 800 + s.rng.Intn(1201)
	}
	return response, nil
}

// Catalog lists the supported actions per platform, for the discovery
// endpoint.
func (s *Simulator) Catalog() map[string][]string {
	catalog := make(map[string][]string, len(platformResponses))
	for platform, actions := range platformResponses {
		names := make([]string, 0, len(actions))
		for action := range actions {
			names = append(names, action)
		}
		sort.Strings(names)
		catalog[platform] = names
	}
	return catalog
}
