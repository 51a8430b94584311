package kra

import "math"

const (
	CategoryOutstanding      = "Outstanding"
	CategoryVeryGood         = "Very Good"
	CategoryGood             = "Good"
	CategoryNeedsImprovement = "Needs Improvement"
	CategoryPoor             = "Poor"
)

// ComputeScore turns a period's rated entries into a weighted 0-100 score.
// Each entry contributes weight*rating/5. An empty set produces no score at
// all: absence of ratings is not a zero.
func ComputeScore(entries []RatedEntry) (total float64, category string, ok bool) {
	if len(entries) == 0 {
		return 0, "", false
	}
	for _, entry := range entries {
		total += entry.WeightPercentage * float64(entry.Rating) / 5
	}
	total = round2(total)
	return total, Categorize(total), true
}

// Categorize maps a total score to its performance band, highest first.
func Categorize(total float64) string {
	switch {
	case total >= 90:
		return CategoryOutstanding
	case total >= 75:
		return CategoryVeryGood
	case total >= 60:
		return CategoryGood
	case total >= 50:
		return CategoryNeedsImprovement
	default:
		return CategoryPoor
	}
}

func ValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
