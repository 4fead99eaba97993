package domain

// ConfidenceTier buckets an edge by how strongly the system currently believes it.
type ConfidenceTier string

const (
	TierStrong   ConfidenceTier = "strong"
	TierModerate ConfidenceTier = "moderate"
	TierWeak     ConfidenceTier = "weak"
	TierFaded    ConfidenceTier = "faded"
)

func ComputeTier(confidence float64) ConfidenceTier {
	switch {
	case confidence > 0.85:
		return TierStrong
	case confidence > 0.70:
		return TierModerate
	case confidence > 0.40:
		return TierWeak
	default:
		return TierFaded
	}
}

func TierReason(confidence float64) string {
	switch ComputeTier(confidence) {
	case TierStrong:
		return "confidence > 0.85"
	case TierModerate:
		return "0.70 < confidence <= 0.85"
	case TierWeak:
		return "0.40 < confidence <= 0.70"
	default:
		return "confidence <= 0.40"
	}
}

func AllTiers() []ConfidenceTier {
	return []ConfidenceTier{TierStrong, TierModerate, TierWeak, TierFaded}
}

func ValidTier(t string) bool {
	switch ConfidenceTier(t) {
	case TierStrong, TierModerate, TierWeak, TierFaded:
		return true
	}
	return false
}

// TierCounts returns an edge count for every tier, zeros included.
func TierCounts(confidences []float64) map[ConfidenceTier]int {
	counts := make(map[ConfidenceTier]int, 4)
	for _, t := range AllTiers() {
		counts[t] = 0
	}
	for _, c := range confidences {
		counts[ComputeTier(c)]++
	}
	return counts
}
