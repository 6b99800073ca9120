package premium

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plusOne adds one to every value it is given.
type plusOne struct {
	calls int
	width int
}

func (p *plusOne) Transform(rows [][]float64) ([][]float64, error) {
	p.calls++
	out := make([][]float64, len(rows))
	for i, row := range rows {
		p.width = len(row)
		out[i] = make([]float64, len(row))
		for j, x := range row {
			out[i][j] = x + 1
		}
	}
	return out, nil
}

type failingScaler struct{}

func (failingScaler) Transform([][]float64) ([][]float64, error) {
	return nil, errors.New("boom")
}

type shortScaler struct{}

func (shortScaler) Transform(rows [][]float64) ([][]float64, error) {
	return [][]float64{{0}}, nil
}

func TestScale(t *testing.T) {
	vec := NewEncoder(NewRiskScorer(DefaultPolicy())).EncodeAdult(sampleRecord())
	scaler := &plusOne{}

	out, err := Scale(vec, ScalerBundle{
		ColsToScale: []string{ColAge, ColIncomeLakhs},
		Scaler:      scaler,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, scaler.calls)
	assert.Equal(t, 2, scaler.width)

	for _, col := range AdultSchema.Columns() {
		before, _ := vec.Get(col)
		after, _ := out.Get(col)
		if col == ColAge || col == ColIncomeLakhs {
			assert.Equal(t, before+1, after, col)
		} else {
			assert.Equal(t, before, after, col)
		}
	}

	// input vector untouched
	age, _ := vec.Get(ColAge)
	assert.Equal(t, 23.0, age)
}

func TestScale_NoColumns(t *testing.T) {
	vec := NewEncoder(NewRiskScorer(DefaultPolicy())).EncodeYoung(sampleRecord())
	out, err := Scale(vec, ScalerBundle{})
	require.NoError(t, err)
	assert.Equal(t, vec.Row(), out.Row())
}

func TestScale_Errors(t *testing.T) {
	vec := NewEncoder(NewRiskScorer(DefaultPolicy())).EncodeAdult(sampleRecord())

	tests := []struct {
		name   string
		bundle ScalerBundle
	}{
		{"missing scaler", ScalerBundle{ColsToScale: []string{ColAge}}},
		{"column not in schema", ScalerBundle{ColsToScale: []string{ColMedicalHistory}, Scaler: &plusOne{}}},
		{"transform error", ScalerBundle{ColsToScale: []string{ColAge}, Scaler: failingScaler{}}},
		{"wrong shape", ScalerBundle{ColsToScale: []string{ColAge, ColIncomeLakhs}, Scaler: shortScaler{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scale(vec, tt.bundle)
			assert.ErrorIs(t, err, ErrSchemaMismatch)
		})
	}
}
