// internal/premium/policy.go
package premium

import (
	"fmt"
	"math"
)

// MatchMode selects how medical history text is turned into conditions.
type MatchMode string

const (
	// MatchSubstring sums every known condition whose name appears anywhere
	// in the history, case-insensitively.
	MatchSubstring MatchMode = "substring-sum"
	// MatchSegment splits the history on "&" and looks each trimmed,
	// lower-cased segment up exactly. Unknown segments weigh 0.
	MatchSegment MatchMode = "segment-lookup"
)

// Policy is the encoding contract a trained artifact set was built against.
// Artifacts record the policy version they expect in their manifest and the
// registry refuses to pair them with a different one.
type Policy struct {
	Version         string
	Match           MatchMode
	NoDiseaseWeight float64
	ThyroidWeight   float64
	// TruncatePremium drops the fractional part of the model output.
	TruncatePremium bool
}

const (
	PolicySubstringV3 = "substring-sum/v3"
	PolicySegmentV2   = "segment-lookup/v2"
)

var policies = map[string]Policy{
	PolicySubstringV3: {
		Version:         PolicySubstringV3,
		Match:           MatchSubstring,
		NoDiseaseWeight: 1,
		ThyroidWeight:   6,
	},
	PolicySegmentV2: {
		Version:         PolicySegmentV2,
		Match:           MatchSegment,
		NoDiseaseWeight: 0,
		ThyroidWeight:   5,
		TruncatePremium: true,
	},
}

// DefaultPolicy matches the artifacts shipped under artifacts/.
func DefaultPolicy() Policy {
	return policies[PolicySubstringV3]
}

// LookupPolicy returns the registered policy with the given version.
func LookupPolicy(version string) (Policy, error) {
	if version == "" {
		return DefaultPolicy(), nil
	}
	p, ok := policies[version]
	if !ok {
		return Policy{}, fmt.Errorf("unknown encoding policy %q", version)
	}
	return p, nil
}

// PolicyVersions lists every registered policy version.
func PolicyVersions() []string {
	return []string{PolicySubstringV3, PolicySegmentV2}
}

// conditionWeights is the weight table for this policy, keyed by lower-case
// condition name.
func (p Policy) conditionWeights() map[string]float64 {
	return map[string]float64{
		"diabetes":            6,
		"high blood pressure": 6,
		"thyroid":             p.ThyroidWeight,
		"heart disease":       8,
		"no disease":          p.NoDiseaseWeight,
		"none":                p.NoDiseaseWeight,
	}
}

func (p Policy) finalizePremium(v float64) float64 {
	if p.TruncatePremium {
		return math.Trunc(v)
	}
	return v
}
