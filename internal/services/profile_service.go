package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/medvoyage/lead-service/internal/models"
	"github.com/medvoyage/lead-service/internal/repositories"
)

// ProfileService mirrors the identity provider's view of a user into the
// local profiles table so dashboards and prefill have somewhere to read
// from without another round-trip to the provider.
type ProfileService interface {
	// Sync upserts the profile from verified identity claims. Called on
	// authenticated requests that need the local mirror.
	Sync(ctx context.Context, userID, email, fullName string, role models.UserRole) (*models.Profile, error)

	Get(ctx context.Context, userID string) (*models.Profile, error)
}

type profileService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewProfileService(repo repositories.Repository, logger *slog.Logger) ProfileService {
	return &profileService{
		repo:   repo,
		logger: logger,
	}
}

func (s *profileService) Sync(ctx context.Context, userID, email, fullName string, role models.UserRole) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrUserNotFound
	}

	profile := &models.Profile{
		ID:     uuid.NewString(),
		UserID: userID,
		Email:  email,
		Role:   role,
	}
	if fullName != "" {
		profile.FullName = &fullName
	}

	if existing, err := s.repo.Profile().GetByUserID(ctx, userID); err == nil {
		// Keep the row's identity; only the claim-derived fields move.
		profile.ID = existing.ID
		if profile.FullName == nil {
			profile.FullName = existing.FullName
		}
		profile.Phone = existing.Phone
		profile.Country = existing.Country
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.repo.Profile().Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to sync profile: %w", err)
	}

	s.logger.Debug("Profile synced", "user_id", userID, "role", role)
	return profile, nil
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.Profile().GetByUserID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}
