// internal/premium/validator.go
package premium

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Defaults substituted for missing or unusable applicant fields.
const (
	DefaultAge                = 25
	DefaultNumberOfDependants = 0
	DefaultIncomeLakhs        = 0.0
	DefaultGeneticalRisk      = 1
	DefaultInsurancePlan      = PlanBronze
	DefaultSmokingStatus      = SmokingNone
	DefaultBMICategory        = BMINormal
	DefaultGender             = GenderMale
	DefaultMaritalStatus      = MaritalUnmarried
	DefaultRegion             = RegionNorthwest
	DefaultEmploymentStatus   = EmploymentSalaried
	DefaultMedicalHistory     = "No Disease"

	MinAge           = 18
	MaxAge           = 100
	MinGeneticalRisk = 0
	MaxGeneticalRisk = 5
)

// Validate builds a complete ApplicantRecord from a partial payload. It never
// fails: absent, mistyped or out-of-range fields take their default. The
// input map is only read.
func Validate(raw map[string]interface{}) ApplicantRecord {
	rec := ApplicantRecord{
		Age:                intField(raw, FieldAge, DefaultAge, MinAge, MaxAge),
		NumberOfDependants: dependantsField(raw),
		IncomeLakhs:        incomeField(raw),
		GeneticalRisk:      intField(raw, FieldGeneticalRisk, DefaultGeneticalRisk, MinGeneticalRisk, MaxGeneticalRisk),
		MedicalHistory:     DefaultMedicalHistory,
		InsurancePlan:      DefaultInsurancePlan,
		BMICategory:        DefaultBMICategory,
		SmokingStatus:      DefaultSmokingStatus,
		EmploymentStatus:   DefaultEmploymentStatus,
		Region:             DefaultRegion,
		Gender:             DefaultGender,
		MaritalStatus:      DefaultMaritalStatus,
	}

	if s, ok := stringField(raw, FieldMedicalHistory); ok {
		rec.MedicalHistory = s
	}
	if s, ok := stringField(raw, FieldInsurancePlan); ok {
		if v, ok := ParseInsurancePlan(s); ok {
			rec.InsurancePlan = v
		}
	}
	if s, ok := stringField(raw, FieldBMICategory); ok {
		if v, ok := ParseBMICategory(s); ok {
			rec.BMICategory = v
		}
	}
	if s, ok := stringField(raw, FieldSmokingStatus); ok {
		if v, ok := ParseSmokingStatus(s); ok {
			rec.SmokingStatus = v
		}
	}
	if s, ok := stringField(raw, FieldEmploymentStatus); ok {
		if v, ok := ParseEmploymentStatus(s); ok {
			rec.EmploymentStatus = v
		}
	}
	if s, ok := stringField(raw, FieldRegion); ok {
		if v, ok := ParseRegion(s); ok {
			rec.Region = v
		}
	}
	if s, ok := stringField(raw, FieldGender); ok {
		if v, ok := ParseGender(s); ok {
			rec.Gender = v
		}
	}
	if s, ok := stringField(raw, FieldMaritalStatus); ok {
		if v, ok := ParseMaritalStatus(s); ok {
			rec.MaritalStatus = v
		}
	}

	return rec
}

// ValidateRecord applies the same defaulting rules to an already typed record.
func ValidateRecord(rec ApplicantRecord) ApplicantRecord {
	return Validate(rec.ToMap())
}

func numberField(raw map[string]interface{}, key string) (float64, bool) {
	v, exists := raw[key]
	if !exists || v == nil {
		return 0, false
	}
	if _, isBool := v.(bool); isBool {
		return 0, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return 0, false
	}
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func intField(raw map[string]interface{}, key string, def, min, max int) int {
	f, ok := numberField(raw, key)
	if !ok {
		return def
	}
	n := int(math.Trunc(f))
	if n < min || n > max {
		return def
	}
	return n
}

func dependantsField(raw map[string]interface{}) int {
	f, ok := numberField(raw, FieldNumberOfDependants)
	if !ok {
		return DefaultNumberOfDependants
	}
	n := int(math.Trunc(f))
	if n < 0 {
		return 0
	}
	return n
}

func incomeField(raw map[string]interface{}) float64 {
	f, ok := numberField(raw, FieldIncomeLakhs)
	if !ok || f < 0 {
		return DefaultIncomeLakhs
	}
	return f
}

func stringField(raw map[string]interface{}, key string) (string, bool) {
	v, exists := raw[key]
	if !exists || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}
