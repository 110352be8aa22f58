// Package triage classifies citizen incident reports and scores their urgency.
//
// Every function here is pure: no I/O, no shared mutable state. Callers may
// invoke them from any number of goroutines.
package triage

import (
	"math"
	"strings"

	"github.com/sprite-ai/civtriage/internal/model"
)

// Classification is the classifier's verdict for one description.
type Classification struct {
	Category   model.Category `json:"category"`
	Confidence float64        `json:"confidence"` // in [0.6, 0.95]
	Score      int            `json:"score"`      // distinct keywords matched for Category
	Matched    []string       `json:"matched"`    // those keywords, in table order
}

// Category trigger keywords, in the fixed enumeration order. Ties go to the
// earlier entry.
var categoryKeywords = []struct {
	category model.Category
	keywords []string
}{
	{model.RoadInfrastructure, []string{"pothole", "road", "pavement", "crack", "asphalt", "street"}},
	{model.WasteSanitation, []string{"garbage", "trash", "waste", "bin", "litter", "overflow"}},
	{model.WaterDrainage, []string{"water", "drain", "flood", "leak", "pipe", "sewer"}},
	{model.PublicSafety, []string{"danger", "hazard", "wire", "electrical", "fire", "gas"}},
	{model.UtilitiesStreetlights, []string{"light", "streetlight", "lamp", "dark", "broken light"}},
}

const (
	confidenceFloor = 0.6
	confidenceCap   = 0.95
)

// Keywords returns a copy of the trigger keywords for a category.
func Keywords(c model.Category) []string {
	for _, ck := range categoryKeywords {
		if ck.category == c {
			return append([]string(nil), ck.keywords...)
		}
	}
	return nil
}

// Classify assigns a description to the category whose keywords it mentions
// most. Empty or irrelevant text falls back to the first category with the
// floor confidence; there is no "unclassified" outcome.
func Classify(description string) Classification {
	text := strings.ToLower(description)

	best := Classification{Category: categoryKeywords[0].category, Score: -1}
	for _, ck := range categoryKeywords {
		matched := matchKeywords(text, ck.keywords)
		if len(matched) > best.Score {
			best = Classification{
				Category: ck.category,
				Score:    len(matched),
				Matched:  matched,
			}
		}
	}

	best.Confidence = confidence(best.Score)
	return best
}

// CategoryScores returns the raw keyword score of every category.
func CategoryScores(description string) map[model.Category]int {
	text := strings.ToLower(description)
	scores := make(map[model.Category]int, len(categoryKeywords))
	for _, ck := range categoryKeywords {
		scores[ck.category] = len(matchKeywords(text, ck.keywords))
	}
	return scores
}

// confidence is min(0.95, 0.6 + 0.1*score), computed over tenths so small
// scores produce exact literals.
func confidence(score int) float64 {
	if score < 0 {
		score = 0
	}
	return math.Min(confidenceCap, float64(6+score)/10)
}

// matchKeywords returns the keywords present in text. Each keyword counts
// once no matter how often it occurs. text must already be lowercased.
func matchKeywords(text string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
