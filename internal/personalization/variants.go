package personalization

import (
	"fmt"

	"github.com/ignite/personalize-ai/internal/domain"
)

// variantStrategy holds the copywriting angles tried for one behavioral
// segment.
type variantStrategy struct {
	name     string
	prefixes []string
	suffixes []string
}

var segmentStrategies = map[string]variantStrategy{
	domain.SegmentHighEngagement: {
		name:     "urgency_and_exclusivity",
		prefixes: []string{"🔥 URGENT:", "⚡ BREAKING:", "🎯 EXCLUSIVE:"},
		suffixes: []string{"- Act Now!", "- Limited Time", "- Members Only"},
	},
	domain.SegmentLowEngagement: {
		name:     "curiosity_and_simplicity",
		prefixes: []string{"Quick Read:", "Simple Update:", "Just 2 Minutes:"},
		suffixes: []string{"(Easy Read)", "(No Fluff)", "(Quick Scan)"},
	},
	domain.SegmentStockFocused: {
		name:     "data_driven",
		prefixes: []string{"📈 Stock Alert:", "💰 Profit Opportunity:", "📊 Analysis:"},
		suffixes: []string{"- Price Target Inside", "- Analyst Upgrade", "- Earnings Play"},
	},
	domain.SegmentMarketFocused: {
		name:     "macro_insights",
		prefixes: []string{"🌍 Market Update:", "📈 Trend Alert:", "⚖️ Market Balance:"},
		suffixes: []string{"- What It Means", "- Impact Analysis", "- Next Moves"},
	},
	domain.SegmentNewsFocused: {
		name:     "breaking_news",
		prefixes: []string{"📰 Breaking:", "🚨 News Alert:", "⚡ Just In:"},
		suffixes: []string{"- Full Story", "- What Happened", "- Key Details"},
	},
}

// SubjectVariants is an A/B test set: the untouched control plus named
// variants keyed "<segment>_v<n>".
type SubjectVariants struct {
	Control  string            `json:"control"`
	Variants map[string]string `json:"variants"`
}

// SubjectVariants generates three subject-line variants per known segment,
// each randomly choosing one prefix or one suffix from that segment's
// strategy. Segments without a strategy (the churn and medium tiers) are
// skipped. Seed the engine's randomness for reproducible output.
func (e *Engine) SubjectVariants(baseSubject string, segments domain.SegmentList) SubjectVariants {
	out := SubjectVariants{
		Control:  baseSubject,
		Variants: make(map[string]string),
	}

	for _, segment := range segments {
		strategy, ok := segmentStrategies[segment]
		if !ok {
			continue
		}
		for i := 0; i < 3; i++ {
			prefix := strategy.prefixes[e.rng.Intn(len(strategy.prefixes))]
			suffix := strategy.suffixes[e.rng.Intn(len(strategy.suffixes))]

			name := fmt.Sprintf("%s_v%d", segment, i+1)
			if e.rng.Intn(2) == 0 {
				out.Variants[name] = prefix + " " + baseSubject
			} else {
				out.Variants[name] = baseSubject + " " + suffix
			}
		}
	}
	return out
}
