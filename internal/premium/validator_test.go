package premium

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultRecord() ApplicantRecord {
	return ApplicantRecord{
		Age:                DefaultAge,
		NumberOfDependants: DefaultNumberOfDependants,
		IncomeLakhs:        DefaultIncomeLakhs,
		GeneticalRisk:      DefaultGeneticalRisk,
		InsurancePlan:      DefaultInsurancePlan,
		BMICategory:        DefaultBMICategory,
		SmokingStatus:      DefaultSmokingStatus,
		EmploymentStatus:   DefaultEmploymentStatus,
		Region:             DefaultRegion,
		MedicalHistory:     DefaultMedicalHistory,
		Gender:             DefaultGender,
		MaritalStatus:      DefaultMaritalStatus,
	}
}

func TestValidate_EmptyPayload(t *testing.T) {
	assert.Equal(t, defaultRecord(), Validate(nil))
	assert.Equal(t, defaultRecord(), Validate(map[string]interface{}{}))
}

func TestValidate_FullPayload(t *testing.T) {
	raw := map[string]interface{}{
		"age":                  42,
		"number_of_dependants": 3,
		"income_lakhs":         18.5,
		"genetical_risk":       4,
		"insurance_plan":       "Gold",
		"bmi_category":         "Obesity",
		"smoking_status":       "Regular",
		"employment_status":    "Self-Employed",
		"region":               "Southwest",
		"medical_history":      "Diabetes & Heart disease",
		"gender":               "Female",
		"marital_status":       "Married",
	}

	got := Validate(raw)
	assert.Equal(t, ApplicantRecord{
		Age:                42,
		NumberOfDependants: 3,
		IncomeLakhs:        18.5,
		GeneticalRisk:      4,
		InsurancePlan:      PlanGold,
		BMICategory:        BMIObesity,
		SmokingStatus:      SmokingRegular,
		EmploymentStatus:   EmploymentSelfEmployed,
		Region:             RegionSouthwest,
		MedicalHistory:     "Diabetes & Heart disease",
		Gender:             GenderFemale,
		MaritalStatus:      MaritalMarried,
	}, got)

	// input untouched
	assert.Equal(t, 42, raw["age"])
}

func TestValidate_Numbers(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value interface{}
		check func(t *testing.T, rec ApplicantRecord)
	}{
		{"age as string", "age", "30", func(t *testing.T, r ApplicantRecord) { assert.Equal(t, 30, r.Age) }},
		{"age float truncates", "age", 30.9, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, 30, r.Age) }},
		{"age below range", "age", 17, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, DefaultAge, r.Age) }},
		{"age lower bound", "age", 18, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, 18, r.Age) }},
		{"age upper bound", "age", 100, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, 100, r.Age) }},
		{"age above range", "age", 101, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, DefaultAge, r.Age) }},
		{"age bool", "age", true, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, DefaultAge, r.Age) }},
		{"age garbage", "age", "forty", func(t *testing.T, r ApplicantRecord) { assert.Equal(t, DefaultAge, r.Age) }},
		{"age NaN", "age", math.NaN(), func(t *testing.T, r ApplicantRecord) { assert.Equal(t, DefaultAge, r.Age) }},
		{"negative dependants clamp", "number_of_dependants", -2, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, 0, r.NumberOfDependants) }},
		{"many dependants kept", "number_of_dependants", 9, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, 9, r.NumberOfDependants) }},
		{"negative income", "income_lakhs", -5.0, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, 0.0, r.IncomeLakhs) }},
		{"income string", "income_lakhs", " 12.5 ", func(t *testing.T, r ApplicantRecord) { assert.Equal(t, 12.5, r.IncomeLakhs) }},
		{"income empty string", "income_lakhs", "", func(t *testing.T, r ApplicantRecord) { assert.Equal(t, DefaultIncomeLakhs, r.IncomeLakhs) }},
		{"genetical risk zero kept", "genetical_risk", 0, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, 0, r.GeneticalRisk) }},
		{"genetical risk too high", "genetical_risk", 6, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, DefaultGeneticalRisk, r.GeneticalRisk) }},
		{"genetical risk negative", "genetical_risk", -1, func(t *testing.T, r ApplicantRecord) { assert.Equal(t, DefaultGeneticalRisk, r.GeneticalRisk) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Validate(map[string]interface{}{tt.field: tt.value}))
		})
	}
}

func TestValidate_Labels(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
		want func(r ApplicantRecord) bool
	}{
		{"plan lower case", map[string]interface{}{"insurance_plan": "silver"}, func(r ApplicantRecord) bool { return r.InsurancePlan == PlanSilver }},
		{"plan unknown", map[string]interface{}{"insurance_plan": "Platinum"}, func(r ApplicantRecord) bool { return r.InsurancePlan == DefaultInsurancePlan }},
		{"plan not a string", map[string]interface{}{"insurance_plan": 3}, func(r ApplicantRecord) bool { return r.InsurancePlan == DefaultInsurancePlan }},
		{"smoking extra spaces", map[string]interface{}{"smoking_status": "  no   smoking "}, func(r ApplicantRecord) bool { return r.SmokingStatus == SmokingNone }},
		{"self employed without hyphen", map[string]interface{}{"employment_status": "Self Employed"}, func(r ApplicantRecord) bool { return r.EmploymentStatus == EmploymentSelfEmployed }},
		{"region upper case", map[string]interface{}{"region": "SOUTHEAST"}, func(r ApplicantRecord) bool { return r.Region == RegionSoutheast }},
		{"history blank", map[string]interface{}{"medical_history": "   "}, func(r ApplicantRecord) bool { return r.MedicalHistory == DefaultMedicalHistory }},
		{"history free text kept", map[string]interface{}{"medical_history": "Asthma"}, func(r ApplicantRecord) bool { return r.MedicalHistory == "Asthma" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want(Validate(tt.raw)))
		})
	}
}

func TestValidateRecord_IsIdempotent(t *testing.T) {
	rec := Validate(map[string]interface{}{
		"age":               70,
		"income_lakhs":      55.0,
		"employment_status": "self employed",
	})
	assert.Equal(t, rec, ValidateRecord(rec))
	assert.Equal(t, rec, ValidateRecord(ValidateRecord(rec)))
}

func TestValidateRecord_RepairsTypedRecord(t *testing.T) {
	got := ValidateRecord(ApplicantRecord{Age: 12, GeneticalRisk: 9, InsurancePlan: "Diamond"})
	assert.Equal(t, DefaultAge, got.Age)
	assert.Equal(t, DefaultGeneticalRisk, got.GeneticalRisk)
	assert.Equal(t, DefaultInsurancePlan, got.InsurancePlan)
	assert.Equal(t, DefaultMedicalHistory, got.MedicalHistory)
}
