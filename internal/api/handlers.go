// Package api exposes the personalization service over HTTP: subscriber and
// event ingestion, content management, personalization operations, analytics
// reporting and the mock platform integrations.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/personalization"
	"github.com/ignite/personalize-ai/internal/platform"
)

// Store is the persistence surface the handlers need. Both the Postgres and
// in-memory stores satisfy it.
type Store interface {
	CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error
	GetSubscriber(ctx context.Context, id uuid.UUID) (*domain.Subscriber, error)
	GetSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	ListSubscribers(ctx context.Context, limit, offset int, segment string) ([]domain.Subscriber, int, error)
	AllSubscribers(ctx context.Context) ([]domain.Subscriber, error)

	InsertEvent(ctx context.Context, ev *domain.EngagementEvent) error
	RecentEvents(ctx context.Context, subscriberID uuid.UUID, limit int) ([]domain.EngagementEvent, error)

	CreateContentItem(ctx context.Context, item *domain.ContentItem) error
	ContentItems(ctx context.Context, newsletterID string) ([]domain.ContentItem, error)

	Upsert(ctx context.Context, profile *domain.SubscriberProfile) error
	Get(ctx context.Context, subscriberID uuid.UUID) (*domain.SubscriberProfile, error)
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	store      Store
	profiles   personalization.ProfileStore
	engine     *personalization.Engine
	reporter   *personalization.Reporter
	simulator  *platform.Simulator
	salesforce *platform.SalesforceClient
	baseline   personalization.BaselineMetrics
}

// NewHandlers creates a new Handlers instance. Profile reads default to the
// store; SetProfileSource swaps in the cached path.
func NewHandlers(store Store, engine *personalization.Engine, reporter *personalization.Reporter) *Handlers {
	return &Handlers{
		store:      store,
		profiles:   store,
		engine:     engine,
		reporter:   reporter,
		simulator:  platform.NewSimulator(),
		salesforce: platform.NewSalesforceClient(""),
		baseline:   personalization.DefaultBaseline(),
	}
}

// SetProfileSource routes profile reads through the given store, typically
// the Redis read-through cache.
func (h *Handlers) SetProfileSource(profiles personalization.ProfileStore) {
	h.profiles = profiles
}

// SetSimulator sets the email platform simulator.
func (h *Handlers) SetSimulator(s *platform.Simulator) {
	h.simulator = s
}

// SetSalesforce sets the CRM client.
func (h *Handlers) SetSalesforce(c *platform.SalesforceClient) {
	h.salesforce = c
}

// SetBaseline sets the revenue baseline used for impact projections.
func (h *Handlers) SetBaseline(b personalization.BaselineMetrics) {
	h.baseline = b
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// subscriberID parses the {subscriberID} route parameter. On failure it writes
// a 400 response and returns false.
func subscriberID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid subscriber id")
		return uuid.Nil, false
	}
	return id, true
}

// Health check

// HealthCheck returns the health status of the API.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "personalize-ai",
		"timestamp": time.Now(),
	})
}
