package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	apperrors "github.com/medvoyage/lead-service/internal/errors"
	"github.com/medvoyage/lead-service/internal/events"
	"github.com/medvoyage/lead-service/internal/models"
	"github.com/medvoyage/lead-service/internal/questionnaire"
	"github.com/medvoyage/lead-service/internal/repositories"
	"github.com/medvoyage/lead-service/internal/utils"
)

// Actor identifies the authenticated caller for role-gated operations.
// A zero Actor is an anonymous website visitor.
type Actor struct {
	UserID string
	Email  string
	Role   models.UserRole
}

// LeadAttribution carries the marketing context the website attaches to a
// submission.
type LeadAttribution struct {
	UTMSource   string
	UTMCampaign string
}

type LeadService interface {
	// CreateFromSubmission persists one completed questionnaire traversal
	// as a lead. The id is derived from the session token so a retried
	// submission cannot create a second record.
	CreateFromSubmission(ctx context.Context, sessionToken string, sub *questionnaire.Submission, attr LeadAttribution) (*models.Lead, error)

	GetByID(ctx context.Context, id string, actor Actor) (*models.Lead, error)
	List(ctx context.Context, filters repositories.LeadFilters, actor Actor) ([]*models.Lead, int64, error)
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus, actor Actor) (*models.Lead, error)
	Assign(ctx context.Context, id string, hospitalID string, actor Actor) error
	GetStats(ctx context.Context, actor Actor) (*repositories.LeadStats, error)
}

type leadService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewLeadService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) LeadService {
	return &leadService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== SUBMISSION =====

func (s *leadService) CreateFromSubmission(ctx context.Context, sessionToken string, sub *questionnaire.Submission, attr LeadAttribution) (*models.Lead, error) {
	lead, err := leadFromSubmission(sessionToken, sub, attr)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(lead); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return nil, ve
		}
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	s.logger.Info("Creating lead",
		"lead_id", lead.ID,
		"treatment_category", lead.TreatmentCategory,
		"source", lead.Source)

	if err := s.repo.Lead().Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	// The lead is durable at this point; a publish failure is an
	// operator problem, not a user-facing one.
	event := events.NewLeadEvent(events.EventLeadCreated, events.LeadCreatedEvent{
		LeadID:            lead.ID,
		Email:             lead.Email,
		TreatmentCategory: lead.TreatmentCategory,
		Urgency:           lead.Urgency,
		Source:            lead.Source,
		HasPrescription:   lead.PrescriptionURL != nil,
	})
	if err := s.publisher.PublishLeadEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish lead.created event", "lead_id", lead.ID, "error", err)
	}

	s.logger.Info("Lead created successfully", "lead_id", lead.ID)
	return lead, nil
}

// leadFromSubmission flattens the engine's terminal artifact into the
// stored lead shape.
func leadFromSubmission(sessionToken string, sub *questionnaire.Submission, attr LeadAttribution) (*models.Lead, error) {
	answers, err := json.Marshal(sub.QuestionnaireAnswers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questionnaire answers: %w", err)
	}

	lead := &models.Lead{
		ID:                   uuid.NewSHA1(uuid.NameSpaceOID, []byte("lead:"+sessionToken)).String(),
		Email:                sub.Email,
		Mobile:               optional(sub.Mobile),
		FullName:             optional(sub.FullName),
		DateOfBirth:          optional(sub.DateOfBirth),
		TreatmentCategory:    sub.TreatmentCategory,
		Urgency:              optional(sub.Urgency),
		PreviousDiagnosis:    optional(sub.PreviousDiagnosis),
		DiagnosisDetails:     optional(sub.DiagnosisDetails),
		Budget:               optional(sub.Budget),
		PassportCountry:      optional(sub.PassportCountry),
		TranslationLanguage:  optional(sub.TranslationLanguage),
		VirtualConsultation:  optional(sub.VirtualConsultation),
		PrescriptionURL:      optional(sub.PrescriptionURL),
		QuestionnaireAnswers: datatypes.JSON(answers),
		Source:               sub.Source,
		Status:               models.LeadStatusNew,
		UTMSource:            optional(attr.UTMSource),
		UTMCampaign:          optional(attr.UTMCampaign),
	}

	if lead.DestinationPreference, err = jsonList(sub.DestinationPreference); err != nil {
		return nil, err
	}
	if lead.AllergiesConditions, err = jsonList(sub.AllergiesConditions); err != nil {
		return nil, err
	}

	return lead, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func jsonList(values []string) (datatypes.JSON, error) {
	if len(values) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list: %w", err)
	}
	return datatypes.JSON(encoded), nil
}

// ===== DASHBOARD OPERATIONS =====

func (s *leadService) GetByID(ctx context.Context, id string, actor Actor) (*models.Lead, error) {
	lead, err := s.repo.Lead().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if !canAccessLead(lead, actor) {
		return nil, NewPermissionError(actor.UserID, id, "lead", "read", "not assigned or not the submitting patient")
	}

	return lead, nil
}

func (s *leadService) List(ctx context.Context, filters repositories.LeadFilters, actor Actor) ([]*models.Lead, int64, error) {
	switch actor.Role {
	case models.RoleAdmin:
		// Admins see everything.
	case models.RoleHospital:
		// Hospitals only see leads assigned to them.
		filters.AssignedTo = &actor.UserID
	case models.RolePatient:
		return s.repo.Lead().GetByEmail(ctx, actor.Email, filters)
	default:
		return nil, 0, NewPermissionError(actor.UserID, "", "lead", "list", "unauthenticated")
	}

	leads, total, err := s.repo.Lead().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, total, nil
}

func (s *leadService) UpdateStatus(ctx context.Context, id string, status models.LeadStatus, actor Actor) (*models.Lead, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrLeadInvalidStatus, status)
	}

	lead, err := s.repo.Lead().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if !canManageLead(lead, actor) {
		return nil, NewPermissionError(actor.UserID, id, "lead", "update_status", "not admin or assigned hospital")
	}

	oldStatus := lead.Status
	if oldStatus == status {
		return lead, nil
	}

	if err := s.repo.Lead().UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}
	lead.Status = status

	event := events.NewLeadEvent(events.EventLeadStatusChanged, events.LeadStatusChangedEvent{
		LeadID:    lead.ID,
		Email:     lead.Email,
		OldStatus: oldStatus,
		NewStatus: status,
		ChangedBy: actor.UserID,
	})
	if err := s.publisher.PublishLeadEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish lead.status_changed event", "lead_id", id, "error", err)
	}

	s.logger.Info("Lead status updated",
		"lead_id", id,
		"old_status", oldStatus,
		"new_status", status,
		"user_id", actor.UserID)

	return lead, nil
}

func (s *leadService) Assign(ctx context.Context, id string, hospitalID string, actor Actor) error {
	if actor.Role != models.RoleAdmin {
		return NewPermissionError(actor.UserID, id, "lead", "assign", "admin only")
	}

	if err := s.repo.Lead().Assign(ctx, id, hospitalID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLeadNotFound
		}
		return fmt.Errorf("failed to assign lead: %w", err)
	}

	event := events.NewLeadEvent(events.EventLeadAssigned, events.LeadAssignedEvent{
		LeadID:     id,
		HospitalID: hospitalID,
		AssignedBy: actor.UserID,
	})
	if err := s.publisher.PublishLeadEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish lead.assigned event", "lead_id", id, "error", err)
	}

	s.logger.Info("Lead assigned", "lead_id", id, "hospital_id", hospitalID, "user_id", actor.UserID)
	return nil
}

func (s *leadService) GetStats(ctx context.Context, actor Actor) (*repositories.LeadStats, error) {
	if actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actor.UserID, "", "lead", "view_stats", "admin only")
	}

	stats, err := s.repo.Lead().GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead stats: %w", err)
	}
	return stats, nil
}

// ===== ACCESS RULES =====

func canAccessLead(lead *models.Lead, actor Actor) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleHospital:
		return lead.AssignedTo != nil && *lead.AssignedTo == actor.UserID
	case models.RolePatient:
		return actor.Email != "" && lead.Email == actor.Email
	default:
		return false
	}
}

func canManageLead(lead *models.Lead, actor Actor) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleHospital:
		return lead.AssignedTo != nil && *lead.AssignedTo == actor.UserID
	default:
		return false
	}
}

func validStatus(status models.LeadStatus) bool {
	for _, s := range models.LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}
