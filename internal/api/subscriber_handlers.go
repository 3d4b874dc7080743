package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/pkg/logger"
)

type createSubscriberRequest struct {
	Email                string      `json:"email"`
	FirstName            string      `json:"first_name"`
	LastName             string      `json:"last_name"`
	SignupDate           *time.Time  `json:"signup_date"`
	PlatformID           string      `json:"platform_id"`
	PlatformSubscriberID string      `json:"platform_subscriber_id"`
	SubscriptionTier     string      `json:"subscription_tier"`
	Preferences          domain.JSON `json:"preferences"`
}

// CreateSubscriber registers a subscriber. An existing email is updated in
// place rather than duplicated.
func (h *Handlers) CreateSubscriber(w http.ResponseWriter, r *http.Request) {
	var req createSubscriberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}
	tier := req.SubscriptionTier
	if tier == "" {
		tier = domain.TierBasic
	}
	signup := time.Now().UTC()
	if req.SignupDate != nil {
		signup = *req.SignupDate
	}

	sub := domain.Subscriber{
		ID:                   uuid.New(),
		Email:                req.Email,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		SignupDate:           signup,
		PlatformID:           req.PlatformID,
		PlatformSubscriberID: req.PlatformSubscriberID,
		SubscriptionTier:     tier,
		Preferences:          req.Preferences,
	}
	if err := h.store.CreateSubscriber(r.Context(), &sub); err != nil {
		logger.Error("create subscriber failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to create subscriber")
		return
	}

	respondJSON(w, http.StatusCreated, sub)
}

// ListSubscribers returns a paginated subscriber list, optionally filtered to
// a behavioral segment.
func (h *Handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	params := ParsePagination(r, 50, 200)
	segment := r.URL.Query().Get("segment")

	subs, total, err := h.store.ListSubscribers(r.Context(), params.Limit, params.Offset, segment)
	if err != nil {
		logger.Error("list subscribers failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}
	if subs == nil {
		subs = []domain.Subscriber{}
	}

	respondJSON(w, http.StatusOK, NewPaginatedResponse(subs, params, int64(total)))
}

// GetSubscriber returns a subscriber together with its derived profile when
// one exists.
func (h *Handlers) GetSubscriber(w http.ResponseWriter, r *http.Request) {
	id, ok := subscriberID(w, chi.URLParam(r, "subscriberID"))
	if !ok {
		return
	}

	sub, err := h.store.GetSubscriber(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "subscriber not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load subscriber")
		return
	}

	resp := map[string]interface{}{"subscriber": sub}
	if profile, err := h.profiles.Get(r.Context(), id); err == nil {
		resp["profile"] = profile
	}
	respondJSON(w, http.StatusOK, resp)
}
