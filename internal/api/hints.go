// internal/api/hints.go
package api

import (
	"fmt"

	"premium-workers/internal/common/validation"
	"premium-workers/internal/premium"
)

// Ranges accepted by the quote form. Values outside them are still priced;
// the validator repairs what it must and the response carries a warning.
var formRanges = map[string][2]float64{
	premium.FieldAge:                {18, 100},
	premium.FieldNumberOfDependants: {0, 6},
	premium.FieldIncomeLakhs:        {1, 100},
	premium.FieldGeneticalRisk:      {0, 5},
}

var hintSchema = validation.MustCompile(buildHintSchema())

func buildHintSchema() string {
	return fmt.Sprintf(`{
  "type": "object",
  "required": [%q, %q, %q, %q, %q, %q, %q, %q, %q, %q, %q, %q],
  "properties": {
    %q: {"type": "integer", "minimum": %v, "maximum": %v},
    %q: {"type": "integer", "minimum": %v, "maximum": %v},
    %q: {"type": "number", "minimum": %v, "maximum": %v},
    %q: {"type": "integer", "minimum": %v, "maximum": %v}
  }
}`,
		premium.FieldAge, premium.FieldNumberOfDependants, premium.FieldIncomeLakhs, premium.FieldGeneticalRisk,
		premium.FieldInsurancePlan, premium.FieldBMICategory, premium.FieldSmokingStatus, premium.FieldEmploymentStatus,
		premium.FieldRegion, premium.FieldMedicalHistory, premium.FieldGender, premium.FieldMaritalStatus,
		premium.FieldAge, formRanges[premium.FieldAge][0], formRanges[premium.FieldAge][1],
		premium.FieldNumberOfDependants, formRanges[premium.FieldNumberOfDependants][0], formRanges[premium.FieldNumberOfDependants][1],
		premium.FieldIncomeLakhs, formRanges[premium.FieldIncomeLakhs][0], formRanges[premium.FieldIncomeLakhs][1],
		premium.FieldGeneticalRisk, formRanges[premium.FieldGeneticalRisk][0], formRanges[premium.FieldGeneticalRisk][1],
	)
}

// RangeWarnings lists fields that are missing or outside the form ranges.
func RangeWarnings(raw map[string]interface{}) []string {
	result, err := hintSchema.Validate(raw)
	if err != nil || result.Valid {
		return nil
	}
	warnings := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		warnings = append(warnings, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return warnings
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FormChoices is everything a front end needs to render the quote form.
type FormChoices struct {
	InsurancePlans     []premium.InsurancePlan    `json:"insurancePlans"`
	BMICategories      []premium.BMICategory      `json:"bmiCategories"`
	SmokingStatuses    []premium.SmokingStatus    `json:"smokingStatuses"`
	EmploymentStatuses []premium.EmploymentStatus `json:"employmentStatuses"`
	Regions            []premium.Region           `json:"regions"`
	Genders            []premium.Gender           `json:"genders"`
	MaritalStatuses    []premium.MaritalStatus    `json:"maritalStatuses"`
	MedicalHistories   []string                   `json:"medicalHistories"`
	Ranges             map[string]Range           `json:"ranges"`
}

func FormOptions() FormChoices {
	ranges := make(map[string]Range, len(formRanges))
	for field, r := range formRanges {
		ranges[field] = Range{Min: r[0], Max: r[1]}
	}
	return FormChoices{
		InsurancePlans:     premium.InsurancePlans,
		BMICategories:      premium.BMICategories,
		SmokingStatuses:    premium.SmokingStatuses,
		EmploymentStatuses: premium.EmploymentStatuses,
		Regions:            premium.Regions,
		Genders:            premium.Genders,
		MaritalStatuses:    premium.MaritalStatuses,
		MedicalHistories:   premium.MedicalHistoryOptions,
		Ranges:             ranges,
	}
}
