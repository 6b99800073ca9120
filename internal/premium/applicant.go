// internal/premium/applicant.go
package premium

import "strings"

// InsurancePlan is the purchased plan tier.
type InsurancePlan string

const (
	PlanBronze InsurancePlan = "Bronze"
	PlanSilver InsurancePlan = "Silver"
	PlanGold   InsurancePlan = "Gold"
)

type BMICategory string

const (
	BMINormal      BMICategory = "Normal"
	BMIObesity     BMICategory = "Obesity"
	BMIOverweight  BMICategory = "Overweight"
	BMIUnderweight BMICategory = "Underweight"
)

type SmokingStatus string

const (
	SmokingNone       SmokingStatus = "No Smoking"
	SmokingOccasional SmokingStatus = "Occasional"
	SmokingRegular    SmokingStatus = "Regular"
)

type EmploymentStatus string

const (
	EmploymentSalaried     EmploymentStatus = "Salaried"
	EmploymentSelfEmployed EmploymentStatus = "Self-Employed"
	EmploymentFreelancer   EmploymentStatus = "Freelancer"
)

type Region string

const (
	RegionNorthwest Region = "Northwest"
	RegionNortheast Region = "Northeast"
	RegionSoutheast Region = "Southeast"
	RegionSouthwest Region = "Southwest"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

type MaritalStatus string

const (
	MaritalUnmarried MaritalStatus = "Unmarried"
	MaritalMarried   MaritalStatus = "Married"
)

// ApplicantRecord is a fully populated applicant. Build one with Validate or
// ValidateRecord; the encoders assume every field already holds a usable value.
type ApplicantRecord struct {
	Age                int              `json:"age"`
	NumberOfDependants int              `json:"number_of_dependants"`
	IncomeLakhs        float64          `json:"income_lakhs"`
	GeneticalRisk      int              `json:"genetical_risk"`
	InsurancePlan      InsurancePlan    `json:"insurance_plan"`
	BMICategory        BMICategory      `json:"bmi_category"`
	SmokingStatus      SmokingStatus    `json:"smoking_status"`
	EmploymentStatus   EmploymentStatus `json:"employment_status"`
	Region             Region           `json:"region"`
	MedicalHistory     string           `json:"medical_history"`
	Gender             Gender           `json:"gender"`
	MaritalStatus      MaritalStatus    `json:"marital_status"`
}

// Field names accepted in raw applicant payloads.
const (
	FieldAge                = "age"
	FieldNumberOfDependants = "number_of_dependants"
	FieldIncomeLakhs        = "income_lakhs"
	FieldGeneticalRisk      = "genetical_risk"
	FieldInsurancePlan      = "insurance_plan"
	FieldBMICategory        = "bmi_category"
	FieldSmokingStatus      = "smoking_status"
	FieldEmploymentStatus   = "employment_status"
	FieldRegion             = "region"
	FieldMedicalHistory     = "medical_history"
	FieldGender             = "gender"
	FieldMaritalStatus      = "marital_status"
)

var (
	InsurancePlans     = []InsurancePlan{PlanBronze, PlanSilver, PlanGold}
	BMICategories      = []BMICategory{BMINormal, BMIObesity, BMIOverweight, BMIUnderweight}
	SmokingStatuses    = []SmokingStatus{SmokingNone, SmokingRegular, SmokingOccasional}
	EmploymentStatuses = []EmploymentStatus{EmploymentSalaried, EmploymentSelfEmployed, EmploymentFreelancer}
	Regions            = []Region{RegionNorthwest, RegionSoutheast, RegionNortheast, RegionSouthwest}
	Genders            = []Gender{GenderMale, GenderFemale}
	MaritalStatuses    = []MaritalStatus{MaritalUnmarried, MaritalMarried}
)

// MedicalHistoryOptions lists the histories offered by the quote form.
var MedicalHistoryOptions = []string{
	"Diabetes",
	"High blood pressure",
	"No Disease",
	"Diabetes & High blood pressure",
	"Thyroid",
	"Heart disease",
	"High blood pressure & Heart disease",
	"Diabetes & Thyroid",
	"Diabetes & Heart disease",
}

// ToMap renders the record with the raw payload field names.
func (r ApplicantRecord) ToMap() map[string]interface{} {
	return map[string]interface{}{
		FieldAge:                r.Age,
		FieldNumberOfDependants: r.NumberOfDependants,
		FieldIncomeLakhs:        r.IncomeLakhs,
		FieldGeneticalRisk:      r.GeneticalRisk,
		FieldInsurancePlan:      string(r.InsurancePlan),
		FieldBMICategory:        string(r.BMICategory),
		FieldSmokingStatus:      string(r.SmokingStatus),
		FieldEmploymentStatus:   string(r.EmploymentStatus),
		FieldRegion:             string(r.Region),
		FieldMedicalHistory:     r.MedicalHistory,
		FieldGender:             string(r.Gender),
		FieldMaritalStatus:      string(r.MaritalStatus),
	}
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func ParseInsurancePlan(s string) (InsurancePlan, bool) {
	for _, p := range InsurancePlans {
		if normalizeLabel(s) == normalizeLabel(string(p)) {
			return p, true
		}
	}
	return "", false
}

func ParseBMICategory(s string) (BMICategory, bool) {
	for _, c := range BMICategories {
		if normalizeLabel(s) == normalizeLabel(string(c)) {
			return c, true
		}
	}
	return "", false
}

func ParseSmokingStatus(s string) (SmokingStatus, bool) {
	for _, st := range SmokingStatuses {
		if normalizeLabel(s) == normalizeLabel(string(st)) {
			return st, true
		}
	}
	return "", false
}

// ParseEmploymentStatus also accepts "Self Employed", which older form
// builds sent.
func ParseEmploymentStatus(s string) (EmploymentStatus, bool) {
	n := strings.ReplaceAll(normalizeLabel(s), "-", " ")
	for _, st := range EmploymentStatuses {
		if n == strings.ReplaceAll(normalizeLabel(string(st)), "-", " ") {
			return st, true
		}
	}
	return "", false
}

func ParseRegion(s string) (Region, bool) {
	for _, r := range Regions {
		if normalizeLabel(s) == normalizeLabel(string(r)) {
			return r, true
		}
	}
	return "", false
}

func ParseGender(s string) (Gender, bool) {
	for _, g := range Genders {
		if normalizeLabel(s) == normalizeLabel(string(g)) {
			return g, true
		}
	}
	return "", false
}

func ParseMaritalStatus(s string) (MaritalStatus, bool) {
	for _, m := range MaritalStatuses {
		if normalizeLabel(s) == normalizeLabel(string(m)) {
			return m, true
		}
	}
	return "", false
}
