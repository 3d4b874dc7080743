package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/personalization"
	"github.com/ignite/personalize-ai/internal/platform"
	"github.com/ignite/personalize-ai/internal/store"
)

var apiTestNow = time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

type testAPI struct {
	ts    *httptest.Server
	store *store.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	m := store.NewMemoryStore()
	engine := personalization.NewEngine(m, m, m)
	engine.SetClock(func() time.Time { return apiTestNow })
	engine.SetRand(rand.New(rand.NewSource(1)))

	h := NewHandlers(m, engine, personalization.NewReporter(engine, m))

	sim := platform.NewSimulator()
	sim.SetRand(rand.New(rand.NewSource(1)))
	h.SetSimulator(sim)

	sf := platform.NewSalesforceClient("")
	sf.SetClock(func() time.Time { return apiTestNow })
	h.SetSalesforce(sf)

	ts := httptest.NewServer(NewServer(h).Handler())
	t.Cleanup(ts.Close)
	return &testAPI{ts: ts, store: m}
}

// do issues a request and decodes the JSON response into a generic map.
func (a *testAPI) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, a.ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

// addSubscriber seeds one subscriber directly through the store.
func (a *testAPI) addSubscriber(t *testing.T, email string, signupDaysAgo int) uuid.UUID {
	t.Helper()
	sub := domain.Subscriber{
		ID:               uuid.New(),
		Email:            email,
		SignupDate:       apiTestNow.Add(-time.Duration(signupDaysAgo) * 24 * time.Hour),
		PlatformID:       "mailchimp",
		SubscriptionTier: domain.TierPremium,
	}
	require.NoError(t, a.store.CreateSubscriber(context.Background(), &sub))
	return sub.ID
}

// addOpens seeds n open events spread across the last n days at the given
// hour.
func (a *testAPI) addOpens(t *testing.T, id uuid.UUID, n, hour int) {
	t.Helper()
	for i := 0; i < n; i++ {
		day := apiTestNow.Add(-time.Duration(i) * 24 * time.Hour)
		require.NoError(t, a.store.InsertEvent(context.Background(), &domain.EngagementEvent{
			SubscriberID: id,
			EventType:    domain.EventEmailOpen,
			PlatformID:   "mailchimp",
			Timestamp:    time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC),
		}))
	}
}

// addDailyEngagement seeds an open, click and view per day for n days, which
// pushes the engagement score into the high tier.
func (a *testAPI) addDailyEngagement(t *testing.T, id uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		day := apiTestNow.Add(-time.Duration(i) * 24 * time.Hour)
		base := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
		for j, et := range []domain.EventType{domain.EventEmailOpen, domain.EventLinkClick, domain.EventContentView} {
			ev := domain.EngagementEvent{
				SubscriberID: id,
				EventType:    et,
				PlatformID:   "mailchimp",
				Timestamp:    base.Add(time.Duration(j) * time.Minute),
			}
			if et != domain.EventEmailOpen {
				ev.ContentSection = "Market Analysis"
			}
			require.NoError(t, a.store.InsertEvent(context.Background(), &ev))
		}
	}
}

func TestHealthCheck(t *testing.T) {
	a := newTestAPI(t)
	status, body := a.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "personalize-ai", body["service"])
}

func TestCreateSubscriber(t *testing.T) {
	a := newTestAPI(t)

	status, body := a.do(t, http.MethodPost, "/api/subscribers", map[string]interface{}{
		"email":      "New.User@Example.com",
		"first_name": "New",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "new.user@example.com", body["email"], "email is normalized")
	assert.Equal(t, domain.TierBasic, body["subscription_tier"], "tier defaults to basic")
	assert.NotEmpty(t, body["id"])
}

func TestCreateSubscriber_MissingEmail(t *testing.T) {
	a := newTestAPI(t)
	status, _ := a.do(t, http.MethodPost, "/api/subscribers", map[string]interface{}{"first_name": "Nameless"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListSubscribers_Pagination(t *testing.T) {
	a := newTestAPI(t)
	for i := 0; i < 5; i++ {
		a.addSubscriber(t, string(rune('a'+i))+"@example.com", 30)
	}

	status, body := a.do(t, http.MethodGet, "/api/subscribers?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, status)

	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, 2.0, pagination["page"])
	assert.Equal(t, 5.0, pagination["total"])
	assert.Equal(t, 3.0, pagination["total_pages"])
	assert.True(t, pagination["has_more"].(bool))
	assert.Len(t, body["data"], 2)
}

func TestListSubscribers_SegmentFilter(t *testing.T) {
	a := newTestAPI(t)
	engaged := a.addSubscriber(t, "engaged@example.com", 60)
	a.addSubscriber(t, "idle@example.com", 60)
	a.addOpens(t, engaged, 28, 9)

	status, _ := a.do(t, http.MethodPost, "/api/subscribers/"+engaged.String()+"/profile/rebuild", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := a.do(t, http.MethodGet, "/api/subscribers?segment="+domain.SegmentLowChurnRisk, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["data"], 1)
	first := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "engaged@example.com", first["email"])
}

func TestGetSubscriber(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "known@example.com", 10)

	status, body := a.do(t, http.MethodGet, "/api/subscribers/"+id.String(), nil)
	require.Equal(t, http.StatusOK, status)
	sub := body["subscriber"].(map[string]interface{})
	assert.Equal(t, "known@example.com", sub["email"])
	assert.Nil(t, body["profile"], "no profile before first rebuild")

	status, _ = a.do(t, http.MethodGet, "/api/subscribers/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = a.do(t, http.MethodGet, "/api/subscribers/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestIngestEvent_RebuildsProfile(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "reader@example.com", 45)

	status, body := a.do(t, http.MethodPost, "/api/events", map[string]interface{}{
		"subscriber_id": id.String(),
		"event_type":    "email_open",
		"newsletter_id": "daily_2025_08_15",
		"platform_id":   "mailchimp",
		"timestamp":     apiTestNow.Add(-time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, status)

	event := body["event"].(map[string]interface{})
	assert.Equal(t, "email_open", event["event_type"])

	profile := body["profile"].(map[string]interface{})
	assert.Equal(t, id.String(), profile["subscriber_id"])
	assert.Greater(t, profile["engagement_score"].(float64), 0.0)
}

func TestIngestEvent_Validation(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "reader@example.com", 45)

	status, _ := a.do(t, http.MethodPost, "/api/events", map[string]interface{}{
		"subscriber_id": id.String(),
		"event_type":    "page_scroll",
	})
	assert.Equal(t, http.StatusBadRequest, status, "unknown event type")

	status, _ = a.do(t, http.MethodPost, "/api/events", map[string]interface{}{
		"subscriber_id": uuid.NewString(),
		"event_type":    "email_open",
	})
	assert.Equal(t, http.StatusNotFound, status, "unknown subscriber")
}

func TestGetSubscriberEvents(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "reader@example.com", 45)
	a.addOpens(t, id, 10, 9)

	status, body := a.do(t, http.MethodGet, "/api/subscribers/"+id.String()+"/events?limit=3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3.0, body["total"])
	assert.Len(t, body["events"], 3)
}

func TestContentLifecycle(t *testing.T) {
	a := newTestAPI(t)

	status, _ := a.do(t, http.MethodPost, "/api/content", map[string]interface{}{
		"newsletter_id": "daily_2025_08_15",
		"section_name":  "Market Analysis",
		"content_type":  domain.ContentMarketCommentary,
		"title":         "Rate Cut Odds Shift",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = a.do(t, http.MethodPost, "/api/content", map[string]interface{}{
		"newsletter_id": "daily_2025_08_15",
		"section_name":  "",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := a.do(t, http.MethodGet, "/api/content?newsletter_id=daily_2025_08_15", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["total"])
}

func TestPredictContentPerformance(t *testing.T) {
	a := newTestAPI(t)

	status, body := a.do(t, http.MethodPost, "/api/content/predict", map[string]interface{}{
		"item": map[string]interface{}{
			"title":        "NVIDIA Deep Dive",
			"content_type": domain.ContentStockAnalysis,
			"tags":         []string{"stocks", "analysis"},
		},
		"target_segments": []string{domain.SegmentStockFocused},
	})
	require.Equal(t, http.StatusOK, status)

	predictions := body["predictions"].(map[string]interface{})
	stock := predictions[domain.SegmentStockFocused].(map[string]interface{})
	// 85 base + 15 type match + 2*5 keyword bonus
	assert.Equal(t, 100.0, stock["predicted_engagement_score"])

	status, _ = a.do(t, http.MethodPost, "/api/content/predict", map[string]interface{}{
		"item": map[string]interface{}{"title": "No Segments"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPersonalizeSubject_NoProfile(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "fresh@example.com", 5)

	status, body := a.do(t, http.MethodPost, "/api/personalize/subject-line", map[string]interface{}{
		"subscriber_id": id.String(),
		"base_subject":  "Daily Brief",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Daily Brief", body["subject_line"])
	assert.False(t, body["personalized"].(bool))
}

func TestPersonalizeSubject_HighEngagement(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "reader@example.com", 60)
	a.addDailyEngagement(t, id, 28)
	status, _ := a.do(t, http.MethodPost, "/api/subscribers/"+id.String()+"/profile/rebuild", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := a.do(t, http.MethodPost, "/api/personalize/subject-line", map[string]interface{}{
		"subscriber_id": id.String(),
		"base_subject":  "Daily Brief",
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, body["personalized"].(bool))
	assert.Equal(t, "🔥 Daily Brief", body["subject_line"])
}

func TestOrderContent_InlineItems(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "reader@example.com", 60)

	status, body := a.do(t, http.MethodPost, "/api/personalize/content-order", map[string]interface{}{
		"subscriber_id": id.String(),
		"items": []map[string]interface{}{
			{"section_name": "A", "content_type": "news"},
			{"section_name": "B", "content_type": "stock_analysis"},
		},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 2, "no preferences keeps the input order")
}

func TestPersonalizeNewsletter(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "reader@example.com", 60)
	a.addOpens(t, id, 20, 14)
	status, _ := a.do(t, http.MethodPost, "/api/subscribers/"+id.String()+"/profile/rebuild", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := a.do(t, http.MethodPost, "/api/personalize/newsletter", map[string]interface{}{
		"subscriber_id": id.String(),
		"newsletter_id": "daily_2025_08_15",
		"base_subject":  "Daily Brief",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "14:00", body["optimal_send_time"])
	assert.NotEmpty(t, body["subject_line"])

	status, _ = a.do(t, http.MethodPost, "/api/personalize/newsletter", map[string]interface{}{
		"subscriber_id": uuid.NewString(),
		"newsletter_id": "daily_2025_08_15",
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSubjectVariants_ExplicitSegments(t *testing.T) {
	a := newTestAPI(t)

	status, body := a.do(t, http.MethodPost, "/api/personalize/ab-variants", map[string]interface{}{
		"base_subject": "Daily Brief",
		"segments":     []string{domain.SegmentHighEngagement, domain.SegmentStockFocused},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Daily Brief", body["control"])
	assert.Len(t, body["variants"], 6, "three variants per eligible segment")
}

func TestSendTimeEndpoint(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "reader@example.com", 60)
	a.addOpens(t, id, 10, 9)

	status, body := a.do(t, http.MethodGet, "/api/subscribers/"+id.String()+"/send-time", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "09:00", body["recommended_time"])
	assert.Equal(t, personalization.ConfidenceHigh, body["confidence"])
}

func TestRevenueImpactEndpoints(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "reader@example.com", 60)

	status, _ := a.do(t, http.MethodGet, "/api/subscribers/"+id.String()+"/revenue-impact", nil)
	assert.Equal(t, http.StatusNotFound, status, "no profile yet")

	a.addOpens(t, id, 28, 9)
	status, _ = a.do(t, http.MethodPost, "/api/subscribers/"+id.String()+"/profile/rebuild", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := a.do(t, http.MethodGet, "/api/subscribers/"+id.String()+"/revenue-impact", nil)
	require.Equal(t, http.StatusOK, status)
	impact := body["revenue_impact"].(map[string]interface{})
	assert.Greater(t, impact["annual_revenue_lift"].(float64), 0.0)

	status, body = a.do(t, http.MethodGet, "/api/analytics/revenue-impact", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["total_subscribers"])
	assert.Equal(t, 1.0, body["profiled_subscribers"])
	assert.Greater(t, body["annual_revenue_lift"].(float64), 0.0)
}

func TestDashboardAnalytics(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "reader@example.com", 60)
	a.addOpens(t, id, 5, 9)

	status, body := a.do(t, http.MethodGet, "/api/analytics/dashboard", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["total_subscribers"])
	assert.Equal(t, 5.0, body["total_events"])
	assert.Greater(t, body["overall_open_rate"].(float64), 0.0)
}

func TestPublisherInsightsEndpoint(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "reader@example.com", 60)
	a.addOpens(t, id, 10, 9)
	status, _ := a.do(t, http.MethodPost, "/api/subscribers/"+id.String()+"/profile/rebuild", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := a.do(t, http.MethodGet, "/api/analytics/insights", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["key_insights"])
}

func TestPlatformEndpoints(t *testing.T) {
	a := newTestAPI(t)

	status, body := a.do(t, http.MethodGet, "/api/platforms", nil)
	require.Equal(t, http.StatusOK, status)
	platforms := body["platforms"].(map[string]interface{})
	assert.Contains(t, platforms, platform.PlatformMailchimp)

	status, body = a.do(t, http.MethodPost, "/api/platforms/mailchimp/simulate", map[string]interface{}{
		"action": "authenticate",
	})
	require.Equal(t, http.StatusOK, status)
	resp := body["response"].(map[string]interface{})
	assert.Equal(t, "success", resp["status"])

	status, _ = a.do(t, http.MethodPost, "/api/platforms/mailchimp/simulate", map[string]interface{}{
		"action": "unknown_action",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSalesforceEndpoints(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "sarah.chen@example.com", 60)
	a.addOpens(t, id, 28, 9)

	status, body := a.do(t, http.MethodPost, "/api/salesforce/auth", map[string]interface{}{
		"client_id": "id", "client_secret": "secret", "username": "user", "password": "pass",
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, body["authenticated"].(bool))

	// Sync rebuilds the missing profile on the fly.
	status, body = a.do(t, http.MethodPost, "/api/salesforce/contacts/sync", map[string]interface{}{
		"subscriber_id": id.String(),
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, body["success"].(bool))
	assert.Greater(t, body["lead_score"].(float64), 0.0)

	status, body = a.do(t, http.MethodGet, "/api/salesforce/contacts?email=sarah.chen@example.com", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Sarah", body["first_name"])

	status, body = a.do(t, http.MethodPost, "/api/salesforce/lead-scores", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["updated_count"])

	status, _ = a.do(t, http.MethodPost, "/api/salesforce/contacts/sync", map[string]interface{}{
		"subscriber_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDemoScenarios(t *testing.T) {
	a := newTestAPI(t)
	id := a.addSubscriber(t, "john.investor@example.com", 60)
	a.addOpens(t, id, 10, 9)
	status, _ := a.do(t, http.MethodPost, "/api/subscribers/"+id.String()+"/profile/rebuild", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := a.do(t, http.MethodGet, "/api/demo/scenarios", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1.0, body["total"])
	scenario := body["scenarios"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "investor", scenario["archetype"])
	assert.NotNil(t, scenario["engagement_score"])
}
