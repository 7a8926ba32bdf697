package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RolePatient  UserRole = "patient"
	RoleHospital UserRole = "hospital"
	RoleAdmin    UserRole = "admin"
)

// Profile mirrors the identity collaborator's view of an authenticated
// user. The questionnaire works for anonymous visitors; profiles exist for
// the role-gated dashboards and to pre-fill the personal-details step.
type Profile struct {
	ID       string   `json:"id" gorm:"primaryKey;size:36"`
	UserID   string   `json:"user_id" gorm:"uniqueIndex;not null;size:255"`
	Email    string   `json:"email" gorm:"not null;size:255"`
	FullName *string  `json:"full_name,omitempty" gorm:"size:100"`
	Phone    *string  `json:"phone,omitempty" gorm:"size:20"`
	Country  *string  `json:"country,omitempty" gorm:"size:60"`
	Role     UserRole `json:"role" gorm:"not null;default:patient;size:20"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Profile) TableName() string {
	return "profiles"
}
