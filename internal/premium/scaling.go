// internal/premium/scaling.go
package premium

import "fmt"

// Scale applies the bundle's transformer to ColsToScale and returns a new
// vector. Columns outside ColsToScale keep their values. A scaled column that
// the vector does not have means encoder and artifact disagree and is
// reported as ErrSchemaMismatch.
func Scale(vec FeatureVector, bundle ScalerBundle) (FeatureVector, error) {
	out := vec.Clone()
	if len(bundle.ColsToScale) == 0 {
		return out, nil
	}
	if bundle.Scaler == nil {
		return FeatureVector{}, fmt.Errorf("%w: scaler missing for %d columns", ErrSchemaMismatch, len(bundle.ColsToScale))
	}

	subset := make([]float64, len(bundle.ColsToScale))
	for i, col := range bundle.ColsToScale {
		x, ok := vec.Get(col)
		if !ok {
			return FeatureVector{}, fmt.Errorf("%w: scaler column %q not in %s schema",
				ErrSchemaMismatch, col, vec.Schema().Name())
		}
		subset[i] = x
	}

	scaled, err := bundle.Scaler.Transform([][]float64{subset})
	if err != nil {
		return FeatureVector{}, fmt.Errorf("%w: transform: %v", ErrSchemaMismatch, err)
	}
	if len(scaled) != 1 || len(scaled[0]) != len(bundle.ColsToScale) {
		return FeatureVector{}, fmt.Errorf("%w: scaler returned wrong shape for %d columns",
			ErrSchemaMismatch, len(bundle.ColsToScale))
	}

	for i, col := range bundle.ColsToScale {
		if err := out.Set(col, scaled[0][i]); err != nil {
			return FeatureVector{}, err
		}
	}
	return out, nil
}
