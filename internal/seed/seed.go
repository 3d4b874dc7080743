// Package seed populates a store with demo subscribers, newsletter content
// and a month of probabilistic engagement history, then rebuilds every
// profile so the dashboard has data on first boot.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/personalize-ai/internal/domain"
	"github.com/ignite/personalize-ai/internal/personalization"
	"github.com/ignite/personalize-ai/internal/pkg/logger"
)

// Target is the store surface the seeder writes to. Both the Postgres and
// memory stores satisfy it.
type Target interface {
	CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error
	InsertEvent(ctx context.Context, ev *domain.EngagementEvent) error
	CreateContentItem(ctx context.Context, item *domain.ContentItem) error
}

// Seeder generates the demo data set.
type Seeder struct {
	target Target
	engine *personalization.Engine

	now func() time.Time
	rng *rand.Rand
}

// NewSeeder creates a seeder writing to target and rebuilding profiles
// through engine.
func NewSeeder(target Target, engine *personalization.Engine) *Seeder {
	return &Seeder{
		target: target,
		engine: engine,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetClock overrides the seeder's time source.
func (s *Seeder) SetClock(now func() time.Time) { s.now = now }

// SetRand overrides the randomness source for reproducible data sets.
func (s *Seeder) SetRand(rng *rand.Rand) { s.rng = rng }

// subscriberSpec is one demo archetype with its engagement behavior.
type subscriberSpec struct {
	email                string
	firstName            string
	lastName             string
	platformID           string
	platformSubscriberID string
	tier                 string
	signupDaysAgo        int

	dailyOpenRate float64
	clickRate     float64
	daysActive    int
}

var demoSubscribers = []subscriberSpec{
	{"john.investor@example.com", "John", "Investor", "mailchimp", "mc_001", domain.TierPremium, 120, 0.8, 0.4, 30},
	{"sarah.trader@example.com", "Sarah", "Trader", "mailchimp", "mc_002", domain.TierPremium, 45, 0.8, 0.4, 30},
	{"mike.newbie@example.com", "Mike", "Newbie", "convertkit", "ck_001", domain.TierBasic, 7, 0.3, 0.1, 5},
	{"lisa.analyst@example.com", "Lisa", "Analyst", "mailchimp", "mc_003", domain.TierPremium, 200, 0.8, 0.4, 30},
	{"david.casual@example.com", "David", "Casual", "sendgrid", "sg_001", domain.TierBasic, 30, 0.5, 0.2, 20},
	{"emma.growth@example.com", "Emma", "Growth", "mailchimp", "mc_004", domain.TierPremium, 90, 0.8, 0.4, 30},
	{"robert.value@example.com", "Robert", "Value", "convertkit", "ck_002", domain.TierPremium, 180, 0.8, 0.4, 30},
	{"jennifer.inactive@example.com", "Jennifer", "Inactive", "mailchimp", "mc_005", domain.TierBasic, 60, 0.1, 0.02, 10},
}

type contentSpec struct {
	newsletterID string
	sectionName  string
	contentType  string
	title        string
	summary      string
	tags         []string
}

var demoContent = []contentSpec{
	{"daily_2025_08_10", "Market Analysis", domain.ContentMarketCommentary,
		"Tech Stocks Rally Continues",
		"Technology sector shows strong momentum with AI stocks leading gains.",
		[]string{"tech", "AI", "growth", "momentum"}},
	{"daily_2025_08_10", "Stock Spotlight", domain.ContentStockAnalysis,
		"NVIDIA: AI Infrastructure Play",
		"Deep dive into NVIDIA's position in the AI infrastructure market.",
		[]string{"NVDA", "AI", "semiconductors", "growth"}},
	{"daily_2025_08_10", "Economic News", domain.ContentNews,
		"Fed Minutes Signal Cautious Approach",
		"Federal Reserve meeting minutes reveal measured stance on interest rates.",
		[]string{"fed", "interest_rates", "monetary_policy"}},
	{"daily_2025_08_09", "Value Picks", domain.ContentStockRecommendation,
		"Undervalued Dividend Stocks",
		"Three dividend-paying stocks trading below fair value.",
		[]string{"dividends", "value", "income", "undervalued"}},
	{"daily_2025_08_09", "Market Analysis", domain.ContentMarketCommentary,
		"Bond Market Signals",
		"Yield curve movements suggest changing market sentiment.",
		[]string{"bonds", "yield_curve", "fixed_income"}},
	{"daily_2025_08_08", "Crypto Corner", "crypto_analysis",
		"Bitcoin ETF Flows Update",
		"Latest institutional flows into Bitcoin ETFs show continued interest.",
		[]string{"bitcoin", "ETF", "institutional", "crypto"}},
}

var clickSections = []string{"Market Analysis", "Stock Spotlight", "Economic News", "Value Picks"}

// Run seeds subscribers, content and events, then rebuilds every profile.
func (s *Seeder) Run(ctx context.Context) error {
	logger.Info("seeding demo data")

	subscribers, err := s.seedSubscribers(ctx)
	if err != nil {
		return err
	}
	if err := s.seedContent(ctx); err != nil {
		return err
	}
	eventCount, err := s.seedEvents(ctx, subscribers)
	if err != nil {
		return err
	}

	for _, sub := range subscribers {
		if _, err := s.engine.RebuildProfile(ctx, sub.ID); err != nil {
			return fmt.Errorf("rebuild profile for %s: %w", sub.ID, err)
		}
	}

	logger.Info("demo data seeded",
		"subscribers", len(subscribers),
		"content_items", len(demoContent),
		"events", eventCount)
	return nil
}

func (s *Seeder) seedSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	now := s.now()
	out := make([]domain.Subscriber, 0, len(demoSubscribers))

	for _, spec := range demoSubscribers {
		sub := domain.Subscriber{
			ID:                   uuid.New(),
			Email:                spec.email,
			FirstName:            spec.firstName,
			LastName:             spec.lastName,
			SignupDate:           now.Add(-time.Duration(spec.signupDaysAgo) * 24 * time.Hour),
			PlatformID:           spec.platformID,
			PlatformSubscriberID: spec.platformSubscriberID,
			SubscriptionTier:     spec.tier,
		}
		if err := s.target.CreateSubscriber(ctx, &sub); err != nil {
			return nil, fmt.Errorf("seed subscriber %s: %w", spec.email, err)
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *Seeder) seedContent(ctx context.Context) error {
	for _, spec := range demoContent {
		item := domain.ContentItem{
			NewsletterID: spec.newsletterID,
			SectionName:  spec.sectionName,
			ContentType:  spec.contentType,
			Title:        spec.title,
			Summary:      spec.summary,
			Tags:         domain.TagList(spec.tags),
		}
		if err := s.target.CreateContentItem(ctx, &item); err != nil {
			return fmt.Errorf("seed content %q: %w", spec.title, err)
		}
	}
	return nil
}

// seedEvents generates up to 30 days of history per subscriber. Opens land
// in the morning hours; clicks follow opens, views follow clicks.
func (s *Seeder) seedEvents(ctx context.Context, subscribers []domain.Subscriber) (int, error) {
	now := s.now()
	count := 0

	for i, sub := range subscribers {
		spec := demoSubscribers[i]

		days := spec.daysActive
		if days > 30 {
			days = 30
		}
		for daysAgo := 0; daysAgo < days; daysAgo++ {
			if s.rng.Float64() >= spec.dailyOpenRate {
				continue
			}

			day := now.Add(-time.Duration(daysAgo) * 24 * time.Hour)
			openAt := time.Date(day.Year(), day.Month(), day.Day(),
				7+s.rng.Intn(5), s.rng.Intn(60), 0, 0, time.UTC)
			newsletterID := fmt.Sprintf("daily_%s", day.Format("2006_01_02"))

			if err := s.insertEvent(ctx, &count, &domain.EngagementEvent{
				SubscriberID: sub.ID,
				EventType:    domain.EventEmailOpen,
				PlatformID:   sub.PlatformID,
				NewsletterID: newsletterID,
				Timestamp:    openAt,
			}); err != nil {
				return count, err
			}

			if s.rng.Float64() >= spec.clickRate {
				continue
			}
			section := clickSections[s.rng.Intn(len(clickSections))]
			clickAt := openAt.Add(time.Duration(1+s.rng.Intn(30)) * time.Minute)

			if err := s.insertEvent(ctx, &count, &domain.EngagementEvent{
				SubscriberID:   sub.ID,
				EventType:      domain.EventLinkClick,
				PlatformID:     sub.PlatformID,
				NewsletterID:   newsletterID,
				ContentSection: section,
				Timestamp:      clickAt,
			}); err != nil {
				return count, err
			}

			if s.rng.Float64() < 0.7 {
				if err := s.insertEvent(ctx, &count, &domain.EngagementEvent{
					SubscriberID:   sub.ID,
					EventType:      domain.EventContentView,
					PlatformID:     sub.PlatformID,
					NewsletterID:   newsletterID,
					ContentSection: section,
					Timestamp:      clickAt.Add(time.Duration(1+s.rng.Intn(15)) * time.Minute),
				}); err != nil {
					return count, err
				}
			}
		}
	}
	return count, nil
}

func (s *Seeder) insertEvent(ctx context.Context, count *int, ev *domain.EngagementEvent) error {
	if err := s.target.InsertEvent(ctx, ev); err != nil {
		return fmt.Errorf("seed event for %s: %w", ev.SubscriberID, err)
	}
	*count++
	return nil
}

// Archetype returns the behavior label embedded in a demo email, for test
// assertions and demo-scenario listings.
func Archetype(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	if i := strings.LastIndex(local, "."); i >= 0 {
		return local[i+1:]
	}
	return local
}
