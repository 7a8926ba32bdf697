package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medvoyage/lead-service/internal/events"
	"github.com/medvoyage/lead-service/internal/models"
	"github.com/medvoyage/lead-service/internal/questionnaire"
	"github.com/medvoyage/lead-service/internal/repositories"
	"github.com/medvoyage/lead-service/internal/utils"
)

// MockLeadRepository is a mock implementation of LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadRepository) GetByEmail(ctx context.Context, email string, filters repositories.LeadFilters) ([]*models.Lead, int64, error) {
	args := m.Called(ctx, email, filters)
	return args.Get(0).([]*models.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadRepository) List(ctx context.Context, filters repositories.LeadFilters) ([]*models.Lead, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLeadRepository) Assign(ctx context.Context, id string, hospitalID string) error {
	args := m.Called(ctx, id, hospitalID)
	return args.Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) GetStats(ctx context.Context) (*repositories.LeadStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.LeadStats), args.Error(1)
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockRepository aggregates the mocked per-model repositories
type MockRepository struct {
	mock.Mock
	leadRepo    *MockLeadRepository
	profileRepo *MockProfileRepository
}

func (m *MockRepository) Lead() repositories.LeadRepository       { return m.leadRepo }
func (m *MockRepository) Profile() repositories.ProfileRepository { return m.profileRepo }
func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLeadServiceFixture() (LeadService, *MockLeadRepository, *events.MockEventPublisher) {
	mockRepo := &MockRepository{leadRepo: &MockLeadRepository{}, profileRepo: &MockProfileRepository{}}
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewLeadService(mockRepo, publisher, testLogger(), utils.NewValidator())
	return svc, mockRepo.leadRepo, publisher
}

func completedSubmission() *questionnaire.Submission {
	return &questionnaire.Submission{
		Email:                 "jane@example.com",
		Mobile:                "+4915112345678",
		FullName:              "Jane Doe",
		TreatmentCategory:     "cardiac",
		Urgency:               "1_month",
		PreviousDiagnosis:     "yes",
		DiagnosisDetails:      "prior angioplasty",
		DestinationPreference: []string{"Germany", "Turkey"},
		Budget:                "15k_30k",
		Source:                questionnaire.SourceWebsite,
	}
}

func TestLeadService_CreateFromSubmission(t *testing.T) {
	t.Run("persists lead and publishes event", func(t *testing.T) {
		svc, leadRepo, publisher := newLeadServiceFixture()

		leadRepo.On("Create", mock.Anything, mock.MatchedBy(func(lead *models.Lead) bool {
			return lead.Email == "jane@example.com" &&
				lead.TreatmentCategory == "cardiac" &&
				lead.Status == models.LeadStatusNew &&
				lead.Source == "website"
		})).Return(nil)

		lead, err := svc.CreateFromSubmission(context.Background(), "session-token-1", completedSubmission(), LeadAttribution{UTMSource: "google"})

		require.NoError(t, err)
		assert.NotEmpty(t, lead.ID)
		require.NotNil(t, lead.UTMSource)
		assert.Equal(t, "google", *lead.UTMSource)
		assert.Equal(t, []string{"Germany", "Turkey"}, lead.DestinationList())

		require.Len(t, publisher.Events, 1)
		assert.Equal(t, events.EventLeadCreated, publisher.Events[0].Type)
		leadRepo.AssertExpectations(t)
	})

	t.Run("same session token yields same lead id", func(t *testing.T) {
		svc, leadRepo, _ := newLeadServiceFixture()
		leadRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		first, err := svc.CreateFromSubmission(context.Background(), "session-token-2", completedSubmission(), LeadAttribution{})
		require.NoError(t, err)
		second, err := svc.CreateFromSubmission(context.Background(), "session-token-2", completedSubmission(), LeadAttribution{})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("rejects submission without category via validation", func(t *testing.T) {
		svc, _, publisher := newLeadServiceFixture()

		sub := completedSubmission()
		sub.TreatmentCategory = "aromatherapy"

		_, err := svc.CreateFromSubmission(context.Background(), "session-token-3", sub, LeadAttribution{})

		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Empty(t, publisher.Events)
	})

	t.Run("store failure surfaces and publishes nothing", func(t *testing.T) {
		svc, leadRepo, publisher := newLeadServiceFixture()
		leadRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		_, err := svc.CreateFromSubmission(context.Background(), "session-token-4", completedSubmission(), LeadAttribution{})

		require.Error(t, err)
		assert.Empty(t, publisher.Events)
	})
}

func TestLeadService_List(t *testing.T) {
	admin := Actor{UserID: "admin-1", Role: models.RoleAdmin}
	hospital := Actor{UserID: "hospital-1", Role: models.RoleHospital}

	t.Run("admin sees unfiltered list", func(t *testing.T) {
		svc, leadRepo, _ := newLeadServiceFixture()
		leadRepo.On("List", mock.Anything, mock.MatchedBy(func(f repositories.LeadFilters) bool {
			return f.AssignedTo == nil
		})).Return([]*models.Lead{{ID: "l1"}}, int64(1), nil)

		leads, total, err := svc.List(context.Background(), repositories.LeadFilters{}, admin)

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, leads, 1)
	})

	t.Run("hospital list is scoped to assigned leads", func(t *testing.T) {
		svc, leadRepo, _ := newLeadServiceFixture()
		leadRepo.On("List", mock.Anything, mock.MatchedBy(func(f repositories.LeadFilters) bool {
			return f.AssignedTo != nil && *f.AssignedTo == "hospital-1"
		})).Return([]*models.Lead{}, int64(0), nil)

		_, _, err := svc.List(context.Background(), repositories.LeadFilters{}, hospital)

		require.NoError(t, err)
		leadRepo.AssertExpectations(t)
	})

	t.Run("patient list resolves by email", func(t *testing.T) {
		svc, leadRepo, _ := newLeadServiceFixture()
		patient := Actor{UserID: "patient-1", Email: "jane@example.com", Role: models.RolePatient}
		leadRepo.On("GetByEmail", mock.Anything, "jane@example.com", mock.Anything).
			Return([]*models.Lead{{ID: "l1", Email: "jane@example.com"}}, int64(1), nil)

		leads, _, err := svc.List(context.Background(), repositories.LeadFilters{}, patient)

		require.NoError(t, err)
		assert.Len(t, leads, 1)
	})

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		svc, _, _ := newLeadServiceFixture()

		_, _, err := svc.List(context.Background(), repositories.LeadFilters{}, Actor{})

		assert.True(t, IsUnauthorized(err))
	})
}

func TestLeadService_GetByID(t *testing.T) {
	assigned := "hospital-1"
	lead := &models.Lead{ID: "l1", Email: "jane@example.com", AssignedTo: &assigned}

	tests := []struct {
		name    string
		actor   Actor
		wantErr bool
	}{
		{"admin can read any lead", Actor{UserID: "a", Role: models.RoleAdmin}, false},
		{"assigned hospital can read", Actor{UserID: "hospital-1", Role: models.RoleHospital}, false},
		{"other hospital cannot read", Actor{UserID: "hospital-2", Role: models.RoleHospital}, true},
		{"submitting patient can read", Actor{UserID: "p", Email: "jane@example.com", Role: models.RolePatient}, false},
		{"other patient cannot read", Actor{UserID: "p2", Email: "bob@example.com", Role: models.RolePatient}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, leadRepo, _ := newLeadServiceFixture()
			leadRepo.On("GetByID", mock.Anything, "l1").Return(lead, nil)

			_, err := svc.GetByID(context.Background(), "l1", tt.actor)

			if tt.wantErr {
				assert.True(t, IsUnauthorized(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("missing lead maps to ErrLeadNotFound", func(t *testing.T) {
		svc, leadRepo, _ := newLeadServiceFixture()
		leadRepo.On("GetByID", mock.Anything, "gone").Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.GetByID(context.Background(), "gone", Actor{Role: models.RoleAdmin})

		assert.ErrorIs(t, err, ErrLeadNotFound)
	})
}

func TestLeadService_UpdateStatus(t *testing.T) {
	admin := Actor{UserID: "admin-1", Role: models.RoleAdmin}

	t.Run("publishes status change event", func(t *testing.T) {
		svc, leadRepo, publisher := newLeadServiceFixture()
		leadRepo.On("GetByID", mock.Anything, "l1").Return(&models.Lead{ID: "l1", Status: models.LeadStatusNew}, nil)
		leadRepo.On("UpdateStatus", mock.Anything, "l1", models.LeadStatusContacted).Return(nil)

		lead, err := svc.UpdateStatus(context.Background(), "l1", models.LeadStatusContacted, admin)

		require.NoError(t, err)
		assert.Equal(t, models.LeadStatusContacted, lead.Status)
		require.Len(t, publisher.Events, 1)
		assert.Equal(t, events.EventLeadStatusChanged, publisher.Events[0].Type)
	})

	t.Run("no-op when status unchanged", func(t *testing.T) {
		svc, leadRepo, publisher := newLeadServiceFixture()
		leadRepo.On("GetByID", mock.Anything, "l1").Return(&models.Lead{ID: "l1", Status: models.LeadStatusNew}, nil)

		_, err := svc.UpdateStatus(context.Background(), "l1", models.LeadStatusNew, admin)

		require.NoError(t, err)
		assert.Empty(t, publisher.Events)
		leadRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, _, _ := newLeadServiceFixture()

		_, err := svc.UpdateStatus(context.Background(), "l1", "archived", admin)

		assert.ErrorIs(t, err, ErrLeadInvalidStatus)
	})

	t.Run("patient cannot change status", func(t *testing.T) {
		svc, leadRepo, _ := newLeadServiceFixture()
		leadRepo.On("GetByID", mock.Anything, "l1").Return(&models.Lead{ID: "l1", Status: models.LeadStatusNew}, nil)

		_, err := svc.UpdateStatus(context.Background(), "l1", models.LeadStatusContacted, Actor{UserID: "p", Role: models.RolePatient})

		assert.True(t, IsUnauthorized(err))
	})
}

func TestLeadService_Assign(t *testing.T) {
	t.Run("admin assigns and event carries hospital id", func(t *testing.T) {
		svc, leadRepo, publisher := newLeadServiceFixture()
		leadRepo.On("Assign", mock.Anything, "l1", "hospital-9").Return(nil)

		err := svc.Assign(context.Background(), "l1", "hospital-9", Actor{UserID: "admin-1", Role: models.RoleAdmin})

		require.NoError(t, err)
		require.Len(t, publisher.Events, 1)
		assert.Equal(t, events.EventLeadAssigned, publisher.Events[0].Type)
	})

	t.Run("hospital cannot assign", func(t *testing.T) {
		svc, _, _ := newLeadServiceFixture()

		err := svc.Assign(context.Background(), "l1", "hospital-9", Actor{UserID: "hospital-1", Role: models.RoleHospital})

		assert.True(t, IsUnauthorized(err))
	})
}

func TestLeadService_GetStats(t *testing.T) {
	t.Run("admin only", func(t *testing.T) {
		svc, _, _ := newLeadServiceFixture()

		_, err := svc.GetStats(context.Background(), Actor{UserID: "h", Role: models.RoleHospital})

		assert.True(t, IsUnauthorized(err))
	})

	t.Run("returns repository stats", func(t *testing.T) {
		svc, leadRepo, _ := newLeadServiceFixture()
		leadRepo.On("GetStats", mock.Anything).Return(&repositories.LeadStats{TotalLeads: 42}, nil)

		stats, err := svc.GetStats(context.Background(), Actor{UserID: "a", Role: models.RoleAdmin})

		require.NoError(t, err)
		assert.Equal(t, 42, stats.TotalLeads)
	})
}
