package personalization

import (
	"fmt"
	"math"
	"strings"

	"github.com/ignite/personalize-ai/internal/domain"
)

// segmentContentProfile captures what a behavioral segment historically
// responds to.
type segmentContentProfile struct {
	preferredTypes    []string
	preferredKeywords []string
	baseEngagement    float64
}

var segmentContentProfiles = map[string]segmentContentProfile{
	domain.SegmentStockFocused: {
		preferredTypes:    []string{domain.ContentStockAnalysis, domain.ContentStockRecommendation},
		preferredKeywords: []string{"stock", "price", "target", "buy", "sell", "earnings"},
		baseEngagement:    75,
	},
	domain.SegmentMarketFocused: {
		preferredTypes:    []string{domain.ContentMarketCommentary, "economic_analysis"},
		preferredKeywords: []string{"market", "trend", "economy", "fed", "rates"},
		baseEngagement:    68,
	},
	domain.SegmentNewsFocused: {
		preferredTypes:    []string{domain.ContentNews, "breaking_news"},
		preferredKeywords: []string{"breaking", "news", "alert", "update"},
		baseEngagement:    62,
	},
	domain.SegmentHighEngagement: {
		preferredTypes:    []string{"all"},
		preferredKeywords: []string{"exclusive", "premium", "insider"},
		baseEngagement:    85,
	},
	domain.SegmentLowEngagement: {
		preferredTypes:    []string{"educational", "simple_analysis"},
		preferredKeywords: []string{"simple", "easy", "quick", "beginner"},
		baseEngagement:    35,
	},
}

// PredictionFactors itemizes the scoring inputs behind one prediction.
type PredictionFactors struct {
	BaseSegmentEngagement float64 `json:"base_segment_engagement"`
	ContentTypeMatch      float64 `json:"content_type_match"`
	KeywordRelevance      float64 `json:"keyword_relevance"`
}

// ContentPrediction is the expected performance of a content item with one
// target segment.
type ContentPrediction struct {
	PredictedEngagement float64           `json:"predicted_engagement"`
	Confidence          string            `json:"confidence"`
	Factors             PredictionFactors `json:"factors"`
	Recommendations     []string          `json:"recommendations"`
}

// PredictContentPerformance estimates how a content item will land with each
// target segment: the segment's base engagement, plus 15 for a content-type
// match, plus 5 per matched keyword capped at 20, clamped to 100. Segments
// with no content profile (the churn and medium tiers) are omitted from the
// result.
func PredictContentPerformance(item domain.ContentItem, targetSegments []string) map[string]ContentPrediction {
	predictions := make(map[string]ContentPrediction)
	titleLower := strings.ToLower(item.Title)

	for _, segment := range targetSegments {
		prof, ok := segmentContentProfiles[segment]
		if !ok {
			continue
		}

		typeBonus := 0.0
		for _, t := range prof.preferredTypes {
			if t == item.ContentType || t == "all" {
				typeBonus = 15
				break
			}
		}

		keywordBonus := 0.0
		for _, keyword := range prof.preferredKeywords {
			if strings.Contains(titleLower, keyword) || tagMatch(item.Tags, keyword) {
				keywordBonus += 5
			}
		}
		keywordBonus = math.Min(keywordBonus, 20)

		predicted := math.Min(prof.baseEngagement+typeBonus+keywordBonus, 100)

		confidence := ConfidenceMedium
		if typeBonus > 0 {
			confidence = ConfidenceHigh
		}

		predictions[segment] = ContentPrediction{
			PredictedEngagement: round1(predicted),
			Confidence:          confidence,
			Factors: PredictionFactors{
				BaseSegmentEngagement: prof.baseEngagement,
				ContentTypeMatch:      typeBonus,
				KeywordRelevance:      keywordBonus,
			},
			Recommendations: contentRecommendations(predicted, segment),
		}
	}
	return predictions
}

func tagMatch(tags domain.TagList, keyword string) bool {
	for _, tag := range tags {
		if strings.ToLower(tag) == keyword {
			return true
		}
	}
	return false
}

// contentRecommendations suggests copy changes for a weak predicted score or
// segment-specific framing for the extremes.
func contentRecommendations(engagementScore float64, segment string) []string {
	var recs []string

	if engagementScore < 50 {
		recs = append(recs,
			fmt.Sprintf("Consider adding %s-specific keywords to improve relevance", segment),
			"Shorten title for better mobile readability")
	}
	if engagementScore < 70 {
		recs = append(recs, "Add urgency or exclusivity elements to increase appeal")
	}
	if segment == domain.SegmentLowEngagement {
		recs = append(recs,
			"Simplify language and add 'Quick Read' indicator",
			"Include estimated reading time")
	}
	if segment == domain.SegmentHighEngagement {
		recs = append(recs,
			"Add premium insights or exclusive data",
			"Include actionable takeaways")
	}
	return recs
}
