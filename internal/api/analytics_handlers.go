package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/pkg/logger"
)

// daysParam parses a ?days= window with a default and a one-year cap.
func daysParam(r *http.Request, def int) int {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days < 1 || days > 365 {
		return def
	}
	return days
}

// GetDashboard returns the audience-wide analytics snapshot.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.reporter.DashboardAnalytics(r.Context(), daysParam(r, 30))
	if err != nil {
		logger.Error("dashboard analytics failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to compute dashboard analytics")
		return
	}
	respondJSON(w, http.StatusOK, analytics)
}

// GetPublisherInsights returns the narrative publisher report: timing peaks,
// segment performance, content performance and revenue opportunity.
func (h *Handlers) GetPublisherInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.reporter.PublisherInsights(r.Context(), daysParam(r, 30))
	if err != nil {
		logger.Error("publisher insights failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to compute insights")
		return
	}
	respondJSON(w, http.StatusOK, insights)
}

// GetRevenueImpact projects the annual revenue lift for one subscriber.
func (h *Handlers) GetRevenueImpact(w http.ResponseWriter, r *http.Request) {
	id, ok := subscriberID(w, chi.URLParam(r, "subscriberID"))
	if !ok {
		return
	}

	impact, err := h.engine.RevenueImpact(r.Context(), id, &h.baseline)
	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to project revenue impact")
		return
	}
	respondJSON(w, http.StatusOK, impact)
}

// GetAggregateRevenueImpact sums the projected lift across every profiled
// subscriber. Subscribers without a profile are skipped, not errors.
func (h *Handlers) GetAggregateRevenueImpact(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.AllSubscribers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}

	var (
		profiled      int
		totalBaseline float64
		totalImproved float64
	)
	for _, sub := range subs {
		impact, err := h.engine.RevenueImpact(r.Context(), sub.ID, &h.baseline)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to project revenue impact")
			return
		}
		profiled++
		totalBaseline += impact.RevenueImpact.BaselineAnnualRevenue
		totalImproved += impact.RevenueImpact.ImprovedAnnualRevenue
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_subscribers":       len(subs),
		"profiled_subscribers":    profiled,
		"baseline_annual_revenue": totalBaseline,
		"improved_annual_revenue": totalImproved,
		"annual_revenue_lift":     totalImproved - totalBaseline,
	})
}
