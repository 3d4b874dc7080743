package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/platform"
	"github.com/ignite/personalize-ai/internal/seed"
)

// GetPlatformCatalog lists the supported email platforms and their actions.
func (h *Handlers) GetPlatformCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"platforms": h.simulator.Catalog(),
	})
}

type simulateRequest struct {
	Action string `json:"action"`
}

// SimulatePlatform runs one mock email-platform API call.
func (h *Handlers) SimulatePlatform(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "platform")

	var req simulateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.simulator.Simulate(name, req.Action)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"platform": name,
		"action":   req.Action,
		"response": resp,
	})
}

type salesforceAuthRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// SalesforceAuth performs the mock CRM authentication handshake.
func (h *Handlers) SalesforceAuth(w http.ResponseWriter, r *http.Request) {
	var req salesforceAuthRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	auth := h.salesforce.Authenticate(req.ClientID, req.ClientSecret, req.Username, req.Password)
	respondJSON(w, http.StatusOK, auth)
}

type salesforceSyncRequest struct {
	SubscriberID uuid.UUID `json:"subscriber_id"`
}

// syncInput loads the subscriber and its profile (rebuilding when absent) and
// bridges them to CRM sync input.
func (h *Handlers) syncInput(r *http.Request, id uuid.UUID) (platform.SyncInput, error) {
	sub, err := h.store.GetSubscriber(r.Context(), id)
	if err != nil {
		return platform.SyncInput{}, err
	}
	profile, err := h.profiles.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		profile, err = h.engine.RebuildProfile(r.Context(), id)
	}
	if err != nil {
		return platform.SyncInput{}, err
	}
	return platform.SyncInputFrom(sub, profile), nil
}

// SalesforceSyncContact pushes one subscriber into the mock CRM with lead
// scoring.
func (h *Handlers) SalesforceSyncContact(w http.ResponseWriter, r *http.Request) {
	var req salesforceSyncRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SubscriberID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "subscriber_id is required")
		return
	}

	in, err := h.syncInput(r, req.SubscriberID)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "subscriber not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to prepare sync")
		return
	}
	respondJSON(w, http.StatusOK, h.salesforce.SyncContact(in))
}

// SalesforceContactLookup returns the mock CRM contact for an email address.
func (h *Handlers) SalesforceContactLookup(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}
	respondJSON(w, http.StatusOK, h.salesforce.ContactByEmail(email))
}

// SalesforceUpdateLeadScores recomputes lead scores for every profiled
// subscriber and pushes them to the mock CRM in one batch.
func (h *Handlers) SalesforceUpdateLeadScores(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.AllSubscribers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}

	updates := make([]platform.SyncInput, 0, len(subs))
	for _, sub := range subs {
		profile, err := h.profiles.Get(r.Context(), sub.ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load profile")
			return
		}
		updates = append(updates, platform.SyncInputFrom(&sub, profile))
	}
	respondJSON(w, http.StatusOK, h.salesforce.UpdateLeadScores(updates))
}

// SalesforceCreateOpportunity opens a mock CRM opportunity for a
// high-engagement subscriber.
func (h *Handlers) SalesforceCreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req salesforceSyncRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SubscriberID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "subscriber_id is required")
		return
	}

	in, err := h.syncInput(r, req.SubscriberID)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "subscriber not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to prepare sync")
		return
	}
	respondJSON(w, http.StatusOK, h.salesforce.CreateOpportunity(in))
}

// GetDemoScenarios summarizes the demo audience by behavioral archetype so a
// walkthrough can pick interesting subscribers.
func (h *Handlers) GetDemoScenarios(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.AllSubscribers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}

	scenarios := make([]map[string]interface{}, 0, len(subs))
	for _, sub := range subs {
		scenario := map[string]interface{}{
			"subscriber_id": sub.ID,
			"email":         sub.Email,
			"archetype":     seed.Archetype(sub.Email),
			"tier":          sub.SubscriptionTier,
		}
		if profile, err := h.profiles.Get(r.Context(), sub.ID); err == nil {
			scenario["engagement_score"] = profile.EngagementScore
			scenario["churn_risk_score"] = profile.ChurnRiskScore
			scenario["segments"] = profile.BehavioralSegments
			scenario["optimal_send_time"] = profile.OptimalSendTime
		}
		scenarios = append(scenarios, scenario)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": scenarios,
		"total":     len(scenarios),
	})
}
