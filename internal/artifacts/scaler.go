// internal/artifacts/scaler.go
package artifacts

import (
	"encoding/json"
	"fmt"

	"premium-workers/internal/premium"
)

// Scaler parameters follow scikit-learn's fitted attribute names so a fitted
// scaler can be dumped with a few lines of Python.
type scalerFile struct {
	ColsToScale []string  `json:"cols_to_scale"`
	Min         []float64 `json:"min_"`
	Mean        []float64 `json:"mean_"`
	Scale       []float64 `json:"scale_"`
}

// MinMaxScaler computes x*scale_ + min_ per column.
type MinMaxScaler struct {
	min   []float64
	scale []float64
}

// StandardScaler computes (x - mean_) / scale_ per column. A zero scale is
// treated as one, as scikit-learn does for constant columns.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// ParseScaler decodes a scaler file of the given kind and returns it with
// the columns it applies to.
func ParseScaler(kind string, data []byte) ([]string, premium.Transformer, error) {
	var f scalerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("decode %s scaler: %w", kind, err)
	}
	n := len(f.ColsToScale)
	if n == 0 {
		return nil, nil, fmt.Errorf("%s scaler lists no columns", kind)
	}
	if len(f.Scale) != n {
		return nil, nil, fmt.Errorf("%s scaler has %d scale_ values for %d columns", kind, len(f.Scale), n)
	}

	switch kind {
	case ScalerMinMax:
		if len(f.Min) != n {
			return nil, nil, fmt.Errorf("minmax scaler has %d min_ values for %d columns", len(f.Min), n)
		}
		return f.ColsToScale, &MinMaxScaler{min: f.Min, scale: f.Scale}, nil
	case ScalerStandard:
		if len(f.Mean) != n {
			return nil, nil, fmt.Errorf("standard scaler has %d mean_ values for %d columns", len(f.Mean), n)
		}
		scale := make([]float64, n)
		for i, s := range f.Scale {
			if s == 0 {
				s = 1
			}
			scale[i] = s
		}
		return f.ColsToScale, &StandardScaler{mean: f.Mean, scale: scale}, nil
	default:
		return nil, nil, fmt.Errorf("unknown scaler type %q", kind)
	}
}

func (s *MinMaxScaler) Transform(rows [][]float64) ([][]float64, error) {
	return transformRows(rows, len(s.scale), func(i int, x float64) float64 {
		return x*s.scale[i] + s.min[i]
	})
}

func (s *StandardScaler) Transform(rows [][]float64) ([][]float64, error) {
	return transformRows(rows, len(s.scale), func(i int, x float64) float64 {
		return (x - s.mean[i]) / s.scale[i]
	})
}

func transformRows(rows [][]float64, width int, f func(i int, x float64) float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for r, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d values, scaler expects %d", r, len(row), width)
		}
		scaled := make([]float64, width)
		for i, x := range row {
			scaled[i] = f(i, x)
		}
		out[r] = scaled
	}
	return out, nil
}
