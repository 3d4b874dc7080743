package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/pkg/logger"
)

// GetProfile returns a subscriber's derived analytics profile.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := subscriberID(w, chi.URLParam(r, "subscriberID"))
	if !ok {
		return
	}

	profile, err := h.profiles.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// RebuildProfile recomputes every derived signal for a subscriber and
// overwrites the stored profile.
func (h *Handlers) RebuildProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := subscriberID(w, chi.URLParam(r, "subscriberID"))
	if !ok {
		return
	}

	profile, err := h.engine.RebuildProfile(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "subscriber not found")
		return
	}
	if err != nil {
		logger.Error("profile rebuild failed", "subscriber_id", id.String(), "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to rebuild profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// GetSegments returns a subscriber's current behavioral segment labels,
// computed fresh from the event history.
func (h *Handlers) GetSegments(w http.ResponseWriter, r *http.Request) {
	id, ok := subscriberID(w, chi.URLParam(r, "subscriberID"))
	if !ok {
		return
	}

	segments, err := h.engine.Segments(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "subscriber not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute segments")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscriber_id": id,
		"segments":      segments,
	})
}

// OptimizeSendTime returns the send-time recommendation derived from the
// subscriber's open-hour histogram.
func (h *Handlers) OptimizeSendTime(w http.ResponseWriter, r *http.Request) {
	id, ok := subscriberID(w, chi.URLParam(r, "subscriberID"))
	if !ok {
		return
	}

	rec, err := h.engine.OptimizeSendTime(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to analyze send times")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

type personalizeSubjectRequest struct {
	SubscriberID   uuid.UUID `json:"subscriber_id"`
	BaseSubject    string    `json:"base_subject"`
	ContentSummary string    `json:"content_summary"`
}

// PersonalizeSubject rewrites a subject line for one subscriber. Subscribers
// without a profile get the base subject back unchanged.
func (h *Handlers) PersonalizeSubject(w http.ResponseWriter, r *http.Request) {
	var req personalizeSubjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SubscriberID == uuid.Nil || req.BaseSubject == "" {
		respondError(w, http.StatusBadRequest, "subscriber_id and base_subject are required")
		return
	}

	subject, err := h.engine.PersonalizeSubject(r.Context(), req.SubscriberID, req.ContentSummary, req.BaseSubject)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to personalize subject")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscriber_id": req.SubscriberID,
		"base_subject":  req.BaseSubject,
		"subject_line":  subject,
		"personalized":  subject != req.BaseSubject,
	})
}

type orderContentRequest struct {
	SubscriberID uuid.UUID            `json:"subscriber_id"`
	NewsletterID string               `json:"newsletter_id"`
	Items        []domain.ContentItem `json:"items"`
}

// loadItems resolves the content items for an ordering request: inline items
// win, otherwise the stored items for the named newsletter issue.
func (h *Handlers) loadItems(r *http.Request, req orderContentRequest) ([]domain.ContentItem, error) {
	if len(req.Items) > 0 {
		return req.Items, nil
	}
	return h.store.ContentItems(r.Context(), req.NewsletterID)
}

// OrderContent reorders newsletter sections by the subscriber's content
// preferences.
func (h *Handlers) OrderContent(w http.ResponseWriter, r *http.Request) {
	var req orderContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SubscriberID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "subscriber_id is required")
		return
	}

	items, err := h.loadItems(r, req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load content items")
		return
	}

	ordered, err := h.engine.OrderContent(r.Context(), req.SubscriberID, items)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to order content")
		return
	}
	if ordered == nil {
		ordered = []domain.ContentItem{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscriber_id": req.SubscriberID,
		"items":         ordered,
	})
}

type personalizeNewsletterRequest struct {
	SubscriberID   uuid.UUID `json:"subscriber_id"`
	NewsletterID   string    `json:"newsletter_id"`
	BaseSubject    string    `json:"base_subject"`
	ContentSummary string    `json:"content_summary"`
}

// PersonalizeNewsletter assembles the full per-subscriber rendition of one
// newsletter issue: subject line, content order and send time.
func (h *Handlers) PersonalizeNewsletter(w http.ResponseWriter, r *http.Request) {
	var req personalizeNewsletterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SubscriberID == uuid.Nil || req.NewsletterID == "" {
		respondError(w, http.StatusBadRequest, "subscriber_id and newsletter_id are required")
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

	subject, err := h.engine.PersonalizeSubject(r.Context(), req.SubscriberID, req.ContentSummary, req.BaseSubject)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to personalize subject")
		return
	}

	items, err := h.store.ContentItems(r.Context(), req.NewsletterID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load content items")
		return
	}
	ordered, err := h.engine.OrderContent(r.Context(), req.SubscriberID, items)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to order content")
		return
	}
	if ordered == nil {
		ordered = []domain.ContentItem{}
	}

	sendTime := domain.DefaultSendTime
	if profile, err := h.profiles.Get(r.Context(), req.SubscriberID); err == nil && profile.OptimalSendTime != "" {
		sendTime = profile.OptimalSendTime
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscriber_id":     req.SubscriberID,
		"newsletter_id":     req.NewsletterID,
		"subject_line":      subject,
		"content":           ordered,
		"optimal_send_time": sendTime,
	})
}

type subjectVariantsRequest struct {
	SubscriberID uuid.UUID `json:"subscriber_id"`
	BaseSubject  string    `json:"base_subject"`
	Segments     []string  `json:"segments"`
}

// SubjectVariants generates A/B subject-line variants per behavioral segment.
// Segments come from the request, or from the subscriber's live segmentation
// when only a subscriber id is given.
func (h *Handlers) SubjectVariants(w http.ResponseWriter, r *http.Request) {
	var req subjectVariantsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BaseSubject == "" {
		respondError(w, http.StatusBadRequest, "base_subject is required")
		return
	}

	segments := domain.SegmentList(req.Segments)
	if len(segments) == 0 {
		if req.SubscriberID == uuid.Nil {
			respondError(w, http.StatusBadRequest, "segments or subscriber_id is required")
			return
		}
		var err error
		segments, err = h.engine.Segments(r.Context(), req.SubscriberID)
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "subscriber not found")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to compute segments")
			return
		}
	}

	respondJSON(w, http.StatusOK, h.engine.SubjectVariants(req.BaseSubject, segments))
}
