package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/medvoyage/lead-service/internal/models"
)

// Validator wraps go-playground struct validation with the custom tags the
// lead domain uses.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks struct tags on the given value.
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// Custom validation functions

func ValidateTreatmentCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, category := range models.TreatmentCategories {
		if category == value {
			return true
		}
	}
	return false
}

func ValidateUrgency(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, level := range models.UrgencyLevels {
		if level == value {
			return true
		}
	}
	return false
}

func ValidateLeadStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, status := range models.LeadStatuses {
		if string(status) == value {
			return true
		}
	}
	return false
}

func ValidateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RolePatient,
		models.RoleHospital,
		models.RoleAdmin,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("treatment_category", ValidateTreatmentCategory)
	validate.RegisterValidation("urgency", ValidateUrgency)
	validate.RegisterValidation("lead_status", ValidateLeadStatus)
	validate.RegisterValidation("user_role", ValidateUserRole)

	// Report errors against json field names rather than Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
