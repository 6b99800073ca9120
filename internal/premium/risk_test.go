package premium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskScorer_DiseaseRisk(t *testing.T) {
	substring := NewRiskScorer(DefaultPolicy())
	segmentPolicy, err := LookupPolicy(PolicySegmentV2)
	require.NoError(t, err)
	segment := NewRiskScorer(segmentPolicy)

	tests := []struct {
		history       string
		wantSubstring float64
		wantSegment   float64
	}{
		{"No Disease", 1, 0},
		{"None", 1, 0},
		{"Diabetes", 6, 6},
		{"Thyroid", 6, 5},
		{"Heart disease", 8, 8},
		{"Diabetes & High blood pressure", 12, 12},
		{"High blood pressure & Heart disease", 14, 14},
		{"Diabetes & Thyroid", 12, 11},
		{"diabetes&heart disease", 14, 14},
		{"Diabetes and Heart disease", 14, 0},
		{"Asthma", 0, 0},
		{"", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.history, func(t *testing.T) {
			assert.Equal(t, tt.wantSubstring, substring.DiseaseRisk(tt.history))
			assert.Equal(t, tt.wantSegment, segment.DiseaseRisk(tt.history))
		})
	}
}

func TestRiskScorer_NoneMatchesNoDisease(t *testing.T) {
	for _, version := range PolicyVersions() {
		policy, err := LookupPolicy(version)
		require.NoError(t, err)
		s := NewRiskScorer(policy)
		assert.Equal(t, s.DiseaseRisk("No Disease"), s.DiseaseRisk("None"), version)
		assert.Equal(t, s.DiseaseRisk("no disease"), s.DiseaseRisk("NONE"), version)
	}
}

func TestRiskScorer_FinalScore(t *testing.T) {
	s := NewRiskScorer(DefaultPolicy())

	assert.Equal(t, 6.0, s.FinalScore("Diabetes", SmokingNone))
	assert.Equal(t, 12.0, s.FinalScore("Diabetes", SmokingOccasional))
	assert.Equal(t, 18.0, s.FinalScore("Diabetes", SmokingRegular))
	assert.Equal(t, 6.0, s.FinalScore("Diabetes", SmokingStatus("Chain")))
	assert.Equal(t, 0.0, s.FinalScore("Asthma", SmokingRegular))
}

func TestNormalizedRisk(t *testing.T) {
	tests := []struct {
		history string
		want    float64
	}{
		{"No Disease", 0},
		{"Diabetes", 6.0 / 14},
		{"Thyroid", 5.0 / 14},
		{"High blood pressure & Heart disease", 1},
		{"Diabetes & High blood pressure & Heart disease", 1},
		{"Diabetes and Thyroid", 0},
	}
	for _, tt := range tests {
		t.Run(tt.history, func(t *testing.T) {
			got := NormalizedRisk(tt.history)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestLookupPolicy(t *testing.T) {
	p, err := LookupPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), p)

	for _, v := range PolicyVersions() {
		p, err := LookupPolicy(v)
		require.NoError(t, err)
		assert.Equal(t, v, p.Version)
	}

	_, err = LookupPolicy("median/v9")
	assert.Error(t, err)
}

func TestPolicy_FinalizePremium(t *testing.T) {
	segment, err := LookupPolicy(PolicySegmentV2)
	require.NoError(t, err)

	assert.Equal(t, 1234.99, DefaultPolicy().finalizePremium(1234.99))
	assert.Equal(t, 1234.0, segment.finalizePremium(1234.99))
}
