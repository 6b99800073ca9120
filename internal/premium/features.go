// internal/premium/features.go
package premium

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchemaMismatch    = errors.New("SCHEMA_MISMATCH")
	ErrPredictionInvalid = errors.New("PREDICTION_INVALID")
	// ErrArtifactLoadFailed is wrapped by BundleSource implementations when a
	// model or scaler cannot be loaded.
	ErrArtifactLoadFailed = errors.New("ARTIFACT_LOAD_FAILED")
)

// Column names shared by both schemas.
const (
	ColAge                    = "age"
	ColNumberOfDependants     = "number_of_dependants"
	ColSmokingStatus          = "smoking_status"
	ColIncomeLakhs            = "income_lakhs"
	ColMedicalHistory         = "medical_history"
	ColInsurancePlan          = "insurance_plan"
	ColGeneticalRisk          = "genetical_risk"
	ColBMICategory            = "bmi_category"
	ColScore                  = "score"
	ColGenderMale             = "gender_Male"
	ColMaritalUnmarried       = "marital_status_Unmarried"
	ColRegionNorthwest        = "region_Northwest"
	ColRegionSoutheast        = "region_Southeast"
	ColRegionSouthwest        = "region_Southwest"
	ColBMIObesity             = "bmi_category_Obesity"
	ColBMIOverweight          = "bmi_category_Overweight"
	ColBMIUnderweight         = "bmi_category_Underweight"
	ColEmploymentSalaried     = "employment_status_Salaried"
	ColEmploymentSelfEmployed = "employment_status_Self-Employed"
)

// Schema is an ordered, named column layout.
type Schema struct {
	name    string
	columns []string
	index   map[string]int
}

func NewSchema(name string, columns ...string) *Schema {
	s := &Schema{
		name:    name,
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		s.index[c] = i
	}
	return s
}

func (s *Schema) Name() string { return s.name }

func (s *Schema) Len() int { return len(s.columns) }

// Columns returns a copy of the column order.
func (s *Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

func (s *Schema) Has(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Matches reports an error unless columns equals the schema exactly, order
// included.
func (s *Schema) Matches(columns []string) error {
	if len(columns) != len(s.columns) {
		return fmt.Errorf("%w: %s schema has %d columns, artifact expects %d",
			ErrSchemaMismatch, s.name, len(s.columns), len(columns))
	}
	for i, c := range columns {
		if s.columns[i] != c {
			return fmt.Errorf("%w: %s column %d is %q, artifact expects %q",
				ErrSchemaMismatch, s.name, i, s.columns[i], c)
		}
	}
	return nil
}

var (
	YoungSchema = NewSchema("young",
		ColAge,
		ColNumberOfDependants,
		ColSmokingStatus,
		ColIncomeLakhs,
		ColMedicalHistory,
		ColInsurancePlan,
		ColGeneticalRisk,
		ColGenderMale,
		ColMaritalUnmarried,
		ColRegionNorthwest,
		ColRegionSoutheast,
		ColRegionSouthwest,
		ColBMIObesity,
		ColBMIOverweight,
		ColBMIUnderweight,
		ColEmploymentSalaried,
		ColEmploymentSelfEmployed,
	)

	AdultSchema = NewSchema("adult",
		ColAge,
		ColNumberOfDependants,
		ColBMICategory,
		ColIncomeLakhs,
		ColInsurancePlan,
		ColScore,
		ColGenderMale,
		ColRegionNorthwest,
		ColRegionSoutheast,
		ColRegionSouthwest,
		ColMaritalUnmarried,
		ColEmploymentSalaried,
		ColEmploymentSelfEmployed,
	)
)

// FeatureVector is a single row laid out by a Schema. The zero value is not
// usable; create vectors with NewFeatureVector.
type FeatureVector struct {
	schema *Schema
	values []float64
}

// NewFeatureVector returns an all-zero row for schema.
func NewFeatureVector(schema *Schema) FeatureVector {
	return FeatureVector{schema: schema, values: make([]float64, schema.Len())}
}

func (v FeatureVector) Schema() *Schema { return v.schema }

func (v FeatureVector) Get(column string) (float64, bool) {
	i, ok := v.schema.index[column]
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

func (v FeatureVector) Set(column string, value float64) error {
	i, ok := v.schema.index[column]
	if !ok {
		return fmt.Errorf("%w: column %q not in %s schema", ErrSchemaMismatch, column, v.schema.name)
	}
	v.values[i] = value
	return nil
}

// Row returns a copy of the values in schema order.
func (v FeatureVector) Row() []float64 {
	return append([]float64(nil), v.values...)
}

func (v FeatureVector) Clone() FeatureVector {
	return FeatureVector{schema: v.schema, values: v.Row()}
}

// Map is used for audit records and job output.
func (v FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.values))
	for i, c := range v.schema.columns {
		out[c] = v.values[i]
	}
	return out
}

// String renders the vector as one "column=value" list in schema order.
func (v FeatureVector) String() string {
	var b strings.Builder
	for i, c := range v.schema.columns {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s=%g", c, v.values[i])
	}
	return b.String()
}

func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
