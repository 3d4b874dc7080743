package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/pkg/logger"
)

type ingestEventRequest struct {
	SubscriberID   uuid.UUID        `json:"subscriber_id"`
	EventType      domain.EventType `json:"event_type"`
	EventData      domain.JSON      `json:"event_data"`
	NewsletterID   string           `json:"newsletter_id"`
	ContentSection string           `json:"content_section"`
	PlatformID     string           `json:"platform_id"`
	Timestamp      *time.Time       `json:"timestamp"`
}

// IngestEvent records an engagement event and refreshes the subscriber's
// profile so downstream reads see the new signal immediately.
func (h *Handlers) IngestEvent(w http.ResponseWriter, r *http.Request) {
	var req ingestEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SubscriberID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "subscriber_id is required")
		return
	}
	if !domain.ValidEventType(req.EventType) {
		respondError(w, http.StatusBadRequest, "unknown event_type")
		return
	}

	if _, err := h.store.GetSubscriber(r.Context(), req.SubscriberID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "subscriber not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load subscriber")
		return
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	ev := domain.EngagementEvent{
		SubscriberID:   req.SubscriberID,
		EventType:      req.EventType,
		EventData:      req.EventData,
		NewsletterID:   req.NewsletterID,
		ContentSection: req.ContentSection,
		PlatformID:     req.PlatformID,
		Timestamp:      ts,
	}
	if err := h.store.InsertEvent(r.Context(), &ev); err != nil {
		logger.Error("event insert failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to record event")
		return
	}

	resp := map[string]interface{}{"event": ev}
	profile, err := h.engine.RebuildProfile(r.Context(), req.SubscriberID)
	if err != nil {
		// The event is already durable; report it even if the rebuild
		// failed.
		logger.Warn("profile rebuild after ingest failed",
			"subscriber_id", req.SubscriberID.String(), "error", err.Error())
	} else {
		resp["profile"] = profile
	}
	respondJSON(w, http.StatusCreated, resp)
}

// GetSubscriberEvents returns a subscriber's most recent events, newest first.
func (h *Handlers) GetSubscriberEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := subscriberID(w, chi.URLParam(r, "subscriberID"))
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	events, err := h.store.RecentEvents(r.Context(), id, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	if events == nil {
		events = []domain.EngagementEvent{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"total":  len(events),
	})
}
