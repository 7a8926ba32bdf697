package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusClosed    LeadStatus = "closed"
)

// Lead is one prospective patient's submitted intake record, produced
// exactly once per completed questionnaire traversal.
type Lead struct {
	ID    string `json:"id" gorm:"primaryKey;size:36"`
	Email string `json:"email" gorm:"not null;size:255;index" validate:"required,email"`

	// Contact and identity, from the personal-details step.
	Mobile      *string `json:"mobile,omitempty" gorm:"size:20"`
	FullName    *string `json:"full_name,omitempty" gorm:"size:100"`
	DateOfBirth *string `json:"date_of_birth,omitempty" gorm:"size:10"`

	// Intake answers, flattened from the questionnaire.
	TreatmentCategory     string         `json:"treatment_category" gorm:"not null;size:50;index" validate:"required,treatment_category"`
	Urgency               *string        `json:"urgency,omitempty" gorm:"size:20" validate:"omitempty,urgency"`
	PreviousDiagnosis     *string        `json:"previous_diagnosis,omitempty" gorm:"size:30"`
	DiagnosisDetails      *string        `json:"diagnosis_details,omitempty" gorm:"type:text"`
	DestinationPreference datatypes.JSON `json:"destination_preference,omitempty" gorm:"type:jsonb"` // []string
	Budget                *string        `json:"budget,omitempty" gorm:"size:20"`
	PassportCountry       *string        `json:"passport_country,omitempty" gorm:"size:60"`
	TranslationLanguage   *string        `json:"translation_language,omitempty" gorm:"size:30"`
	VirtualConsultation   *string        `json:"virtual_consultation,omitempty" gorm:"size:20"`
	AllergiesConditions   datatypes.JSON `json:"allergies_conditions,omitempty" gorm:"type:jsonb"` // []string
	PrescriptionURL       *string        `json:"prescription_url,omitempty" gorm:"size:500"`

	// The raw answer map plus personal details, kept verbatim for review.
	QuestionnaireAnswers datatypes.JSON `json:"questionnaire_answers" gorm:"type:jsonb"`

	Source string     `json:"source" gorm:"not null;default:website;size:30"`
	Status LeadStatus `json:"status" gorm:"not null;default:new;size:20;index" validate:"omitempty,lead_status"`

	// Attribution and assignment.
	UTMSource   *string `json:"utm_source,omitempty" gorm:"size:100"`
	UTMCampaign *string `json:"utm_campaign,omitempty" gorm:"size:100"`
	AssignedTo  *string `json:"assigned_to,omitempty" gorm:"size:36;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Lead) TableName() string {
	return "leads"
}

// DestinationList decodes the stored destination preferences. A missing or
// malformed column yields an empty list.
func (l *Lead) DestinationList() []string {
	return decodeStringList(l.DestinationPreference)
}

// AllergyList decodes the stored allergies and chronic conditions.
func (l *Lead) AllergyList() []string {
	return decodeStringList(l.AllergiesConditions)
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

// TreatmentCategories enumerates the categories the intake questionnaire
// offers; the lead store rejects anything else.
var TreatmentCategories = []string{
	"physiotherapy", "oncology", "cardiac", "orthopedics", "ophthalmology",
	"dental", "fertility", "neurology", "cosmetic", "other",
}

// UrgencyLevels enumerates the urgency answers of the intake questionnaire.
var UrgencyLevels = []string{"1_month", "3_months", "6_months", "9_months", "exploring"}

// LeadStatuses enumerates the pipeline states a lead moves through.
var LeadStatuses = []LeadStatus{
	LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
	LeadStatusConverted, LeadStatusClosed,
}
