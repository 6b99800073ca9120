// internal/premium/bundle.go
package premium

import "context"

// Band is the age partition that decides which model and schema apply.
type Band string

const (
	BandYoung Band = "young"
	BandAdult Band = "adult"
)

// DefaultYoungMaxAge is the oldest age still priced by the young model.
const DefaultYoungMaxAge = 25

// Model is a trained regressor. It returns one prediction per input row.
type Model interface {
	Predict(rows [][]float64) ([]float64, error)
}

// Transformer is a fitted column scaler. Rows carry only the columns it was
// fitted on, in the fitted order.
type Transformer interface {
	Transform(rows [][]float64) ([][]float64, error)
}

// ScalerBundle pairs a fitted transformer with the columns it rescales.
type ScalerBundle struct {
	ColsToScale []string
	Scaler      Transformer
}

// ModelBundle is everything needed to price one band. Bundles are built once
// and shared read-only between requests.
type ModelBundle struct {
	Band   Band
	Model  Model
	Scaler ScalerBundle
	// Features is the column order the model was trained on. Empty means the
	// model does not declare one.
	Features []string
}

// BundleSource hands out the bundle for a band.
type BundleSource interface {
	Bundle(ctx context.Context, band Band) (*ModelBundle, error)
}

// SchemaFor returns the feature schema a band encodes into.
func SchemaFor(band Band) *Schema {
	if band == BandYoung {
		return YoungSchema
	}
	return AdultSchema
}
