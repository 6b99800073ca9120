// internal/premium/encoder.go
package premium

// Encoder builds band-specific feature vectors. Every mapping below is total:
// values outside the known enums fall back to a default ordinal or to the
// all-zero baseline of their one-hot group.
type Encoder struct {
	scorer *RiskScorer
}

func NewEncoder(scorer *RiskScorer) *Encoder {
	return &Encoder{scorer: scorer}
}

// EncodeYoung lays out the 17-column schema used for applicants up to the
// young band threshold.
func (e *Encoder) EncodeYoung(rec ApplicantRecord) FeatureVector {
	v := NewFeatureVector(YoungSchema)
	vals := map[string]float64{
		ColAge:                float64(rec.Age),
		ColNumberOfDependants: float64(rec.NumberOfDependants),
		ColSmokingStatus:      smokingOrdinal(rec.SmokingStatus),
		ColIncomeLakhs:        rec.IncomeLakhs,
		ColMedicalHistory:     e.scorer.DiseaseRisk(rec.MedicalHistory),
		ColInsurancePlan:      planOrdinal(rec.InsurancePlan),
		ColGeneticalRisk:      float64(rec.GeneticalRisk),
		ColGenderMale:         boolFlag(rec.Gender == GenderMale),
		ColMaritalUnmarried:   boolFlag(rec.MaritalStatus == MaritalUnmarried),
	}
	for k, x := range regionFlags(rec.Region) {
		vals[k] = x
	}
	for k, x := range bmiFlags(rec.BMICategory) {
		vals[k] = x
	}
	for k, x := range employmentFlags(rec.EmploymentStatus) {
		vals[k] = x
	}
	fill(v, vals)
	return v
}

// EncodeAdult lays out the 13-column schema. Medical history and smoking are
// folded into the single "score" column.
func (e *Encoder) EncodeAdult(rec ApplicantRecord) FeatureVector {
	v := NewFeatureVector(AdultSchema)
	vals := map[string]float64{
		ColAge:                float64(rec.Age),
		ColNumberOfDependants: float64(rec.NumberOfDependants),
		ColBMICategory:        bmiOrdinal(rec.BMICategory),
		ColIncomeLakhs:        rec.IncomeLakhs,
		ColInsurancePlan:      planOrdinal(rec.InsurancePlan),
		ColScore:              e.scorer.FinalScore(rec.MedicalHistory, rec.SmokingStatus),
		ColGenderMale:         boolFlag(rec.Gender == GenderMale),
		ColMaritalUnmarried:   boolFlag(rec.MaritalStatus == MaritalUnmarried),
	}
	for k, x := range regionFlags(rec.Region) {
		vals[k] = x
	}
	for k, x := range employmentFlags(rec.EmploymentStatus) {
		vals[k] = x
	}
	fill(v, vals)
	return v
}

// fill only writes columns owned by the schema, so a programming error here
// shows up as a panic in tests rather than a silently shifted row.
func fill(v FeatureVector, vals map[string]float64) {
	for col, x := range vals {
		if err := v.Set(col, x); err != nil {
			panic(err)
		}
	}
}

func planOrdinal(p InsurancePlan) float64 {
	switch p {
	case PlanSilver:
		return 2
	case PlanGold:
		return 3
	default:
		return 1
	}
}

func smokingOrdinal(s SmokingStatus) float64 {
	switch s {
	case SmokingOccasional:
		return 1
	case SmokingRegular:
		return 2
	default:
		return 0
	}
}

func bmiOrdinal(c BMICategory) float64 {
	switch c {
	case BMIUnderweight:
		return 1
	case BMIOverweight:
		return 3
	case BMIObesity:
		return 4
	default:
		return 2
	}
}

// Northeast is the region baseline.
func regionFlags(r Region) map[string]float64 {
	return map[string]float64{
		ColRegionNorthwest: boolFlag(r == RegionNorthwest),
		ColRegionSoutheast: boolFlag(r == RegionSoutheast),
		ColRegionSouthwest: boolFlag(r == RegionSouthwest),
	}
}

// Normal is the BMI baseline.
func bmiFlags(c BMICategory) map[string]float64 {
	return map[string]float64{
		ColBMIObesity:     boolFlag(c == BMIObesity),
		ColBMIOverweight:  boolFlag(c == BMIOverweight),
		ColBMIUnderweight: boolFlag(c == BMIUnderweight),
	}
}

// Freelancer is the employment baseline.
func employmentFlags(s EmploymentStatus) map[string]float64 {
	return map[string]float64{
		ColEmploymentSalaried:     boolFlag(s == EmploymentSalaried),
		ColEmploymentSelfEmployed: boolFlag(s == EmploymentSelfEmployed),
	}
}
