// internal/artifacts/linear.go
package artifacts

import (
	"encoding/json"
	"fmt"
)

// LinearModel is y = intercept + sum(coef[i] * x[i]).
type LinearModel struct {
	features  []string
	coef      []float64
	intercept float64
}

type linearFile struct {
	Features     []string           `json:"features"`
	Coefficients map[string]float64 `json:"coefficients"`
	Intercept    float64            `json:"intercept"`
}

// ParseLinearModel decodes {"features", "coefficients", "intercept"}. Every
// feature needs a coefficient.
func ParseLinearModel(data []byte) (*LinearModel, error) {
	var f linearFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode linear model: %w", err)
	}
	if len(f.Features) == 0 {
		return nil, fmt.Errorf("linear model declares no features")
	}

	coef := make([]float64, len(f.Features))
	for i, name := range f.Features {
		c, ok := f.Coefficients[name]
		if !ok {
			return nil, fmt.Errorf("linear model has no coefficient for %q", name)
		}
		coef[i] = c
	}
	if len(f.Coefficients) != len(f.Features) {
		return nil, fmt.Errorf("linear model has %d coefficients for %d features", len(f.Coefficients), len(f.Features))
	}

	return &LinearModel{features: f.Features, coef: coef, intercept: f.Intercept}, nil
}

func (m *LinearModel) Features() []string {
	return append([]string(nil), m.features...)
}

func (m *LinearModel) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for r, row := range rows {
		if len(row) != len(m.coef) {
			return nil, fmt.Errorf("row %d has %d values, model expects %d", r, len(row), len(m.coef))
		}
		y := m.intercept
		for i, x := range row {
			y += m.coef[i] * x
		}
		out[r] = y
	}
	return out, nil
}
