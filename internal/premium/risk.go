// internal/premium/risk.go
package premium

import "strings"

// MaxNormalizedRisk is the largest condition sum seen when the adult model was
// trained. It is a fixed constant, not recomputed from the weight table.
const MaxNormalizedRisk = 14.0

var normalizedWeights = map[string]float64{
	"diabetes":            6,
	"heart disease":       8,
	"high blood pressure": 6,
	"thyroid":             5,
	"no disease":          0,
	"none":                0,
}

// RiskScorer turns medical history and smoking habits into risk scores under
// a fixed Policy.
type RiskScorer struct {
	policy  Policy
	weights map[string]float64
}

func NewRiskScorer(policy Policy) *RiskScorer {
	return &RiskScorer{
		policy:  policy,
		weights: policy.conditionWeights(),
	}
}

// DiseaseRisk sums the weights of the conditions found in the history.
func (s *RiskScorer) DiseaseRisk(history string) float64 {
	if s.policy.Match == MatchSegment {
		return segmentSum(history, s.weights)
	}

	text := strings.ToLower(history)
	var total float64
	for name, w := range s.weights {
		if strings.Contains(text, name) {
			total += w
		}
	}
	return total
}

// FinalScore is DiseaseRisk scaled by the smoking multiplier.
func (s *RiskScorer) FinalScore(history string, smoking SmokingStatus) float64 {
	return s.DiseaseRisk(history) * SmokingMultiplier(smoking)
}

// SmokingMultiplier is 1, 2 or 3 for no, occasional and regular smoking.
// Anything else counts as a non-smoker.
func SmokingMultiplier(status SmokingStatus) float64 {
	switch status {
	case SmokingOccasional:
		return 2
	case SmokingRegular:
		return 3
	default:
		return 1
	}
}

// NormalizedRisk maps the exact-match condition sum into [0,1].
func NormalizedRisk(history string) float64 {
	r := segmentSum(history, normalizedWeights) / MaxNormalizedRisk
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func segmentSum(history string, weights map[string]float64) float64 {
	var total float64
	for _, seg := range strings.Split(history, "&") {
		total += weights[strings.ToLower(strings.TrimSpace(seg))]
	}
	return total
}
