package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// Server identity header
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "personalize-ai-v1.0")
			next.ServeHTTP(w, req)
		})
	})

	// CORS for the dashboard frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Subscribers and their derived data
		r.Route("/subscribers", func(r chi.Router) {
			r.Post("/", h.CreateSubscriber)
			r.Get("/", h.ListSubscribers)
			r.Route("/{subscriberID}", func(r chi.Router) {
				r.Get("/", h.GetSubscriber)
				r.Get("/events", h.GetSubscriberEvents)
				r.Get("/profile", h.GetProfile)
				r.Post("/profile/rebuild", h.RebuildProfile)
				r.Get("/segments", h.GetSegments)
				r.Get("/send-time", h.OptimizeSendTime)
				r.Get("/revenue-impact", h.GetRevenueImpact)
			})
		})

		// Engagement event ingestion
		r.Post("/events", h.IngestEvent)

		// Newsletter content
		r.Route("/content", func(r chi.Router) {
			r.Post("/", h.CreateContentItem)
			r.Get("/", h.ListContentItems)
			r.Post("/predict", h.PredictContentPerformance)
		})

		// Personalization operations
		r.Route("/personalize", func(r chi.Router) {
			r.Post("/subject-line", h.PersonalizeSubject)
			r.Post("/content-order", h.OrderContent)
			r.Post("/newsletter", h.PersonalizeNewsletter)
			r.Post("/ab-variants", h.SubjectVariants)
		})

		// Audience analytics
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/insights", h.GetPublisherInsights)
			r.Get("/revenue-impact", h.GetAggregateRevenueImpact)
		})

		// Mock email platforms
		r.Route("/platforms", func(r chi.Router) {
			r.Get("/", h.GetPlatformCatalog)
			r.Post("/{platform}/simulate", h.SimulatePlatform)
		})

		// Mock Salesforce CRM
		r.Route("/salesforce", func(r chi.Router) {
			r.Post("/auth", h.SalesforceAuth)
			r.Post("/contacts/sync", h.SalesforceSyncContact)
			r.Get("/contacts", h.SalesforceContactLookup)
			r.Post("/lead-scores", h.SalesforceUpdateLeadScores)
			r.Post("/opportunities", h.SalesforceCreateOpportunity)
		})

		// Demo walkthrough support
		r.Get("/demo/scenarios", h.GetDemoScenarios)
	})

	return r
}
