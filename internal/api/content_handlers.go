package api

import (
	"net/http"
	"strings"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/personalization"
)

// CreateContentItem registers one newsletter section.
func (h *Handlers) CreateContentItem(w http.ResponseWriter, r *http.Request) {
	var item domain.ContentItem
	if !decodeJSON(w, r, &item) {
		return
	}
	if strings.TrimSpace(item.NewsletterID) == "" ||
		strings.TrimSpace(item.SectionName) == "" ||
		strings.TrimSpace(item.ContentType) == "" {
		respondError(w, http.StatusBadRequest, "newsletter_id, section_name and content_type are required")
		return
	}

	if err := h.store.CreateContentItem(r.Context(), &item); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create content item")
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// ListContentItems returns content items, optionally filtered to one
// newsletter issue.
func (h *Handlers) ListContentItems(w http.ResponseWriter, r *http.Request) {
	newsletterID := r.URL.Query().Get("newsletter_id")

	items, err := h.store.ContentItems(r.Context(), newsletterID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load content items")
		return
	}
	if items == nil {
		items = []domain.ContentItem{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

type predictPerformanceRequest struct {
	Item           domain.ContentItem `json:"item"`
	TargetSegments []string           `json:"target_segments"`
}

// PredictContentPerformance estimates how one content item will land with
// each target segment.
func (h *Handlers) PredictContentPerformance(w http.ResponseWriter, r *http.Request) {
	var req predictPerformanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.TargetSegments) == 0 {
		respondError(w, http.StatusBadRequest, "target_segments is required")
		return
	}

	predictions := personalization.PredictContentPerformance(req.Item, req.TargetSegments)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"content_title": req.Item.Title,
		"predictions":   predictions,
	})
}
