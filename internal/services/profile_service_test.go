package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medvoyage/lead-service/internal/models"
)

func newProfileServiceFixture() (ProfileService, *MockProfileRepository) {
	mockRepo := &MockRepository{leadRepo: &MockLeadRepository{}, profileRepo: &MockProfileRepository{}}
	svc := NewProfileService(mockRepo, testLogger())
	return svc, mockRepo.profileRepo
}

func TestProfileService_SyncCreatesMirror(t *testing.T) {
	svc, profileRepo := newProfileServiceFixture()

	profileRepo.On("GetByUserID", mock.Anything, "user-1").Return(nil, gorm.ErrRecordNotFound)
	profileRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.UserID == "user-1" && p.Email == "jane@example.com" &&
			p.FullName != nil && *p.FullName == "Jane Doe" && p.Role == models.RolePatient
	})).Return(nil)

	profile, err := svc.Sync(context.Background(), "user-1", "jane@example.com", "Jane Doe", models.RolePatient)

	require.NoError(t, err)
	assert.NotEmpty(t, profile.ID)
	profileRepo.AssertExpectations(t)
}

func TestProfileService_SyncKeepsLocalOnlyFields(t *testing.T) {
	svc, profileRepo := newProfileServiceFixture()

	phone := "+34600111222"
	country := "Spain"
	existing := &models.Profile{
		ID:      "profile-1",
		UserID:  "user-1",
		Email:   "old@example.com",
		Phone:   &phone,
		Country: &country,
		Role:    models.RolePatient,
	}

	profileRepo.On("GetByUserID", mock.Anything, "user-1").Return(existing, nil)
	profileRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *models.Profile) bool {
		return p.ID == "profile-1" && p.Email == "jane@example.com" &&
			p.Phone == &phone && p.Country == &country && p.Role == models.RoleHospital
	})).Return(nil)

	profile, err := svc.Sync(context.Background(), "user-1", "jane@example.com", "", models.RoleHospital)

	require.NoError(t, err)
	assert.Equal(t, "profile-1", profile.ID)
	profileRepo.AssertExpectations(t)
}

func TestProfileService_SyncRequiresUserID(t *testing.T) {
	svc, _ := newProfileServiceFixture()

	_, err := svc.Sync(context.Background(), "", "jane@example.com", "Jane Doe", models.RolePatient)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileService_GetUnknownUser(t *testing.T) {
	svc, profileRepo := newProfileServiceFixture()

	profileRepo.On("GetByUserID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrUserNotFound)
}
