package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/medvoyage/lead-service/internal/repositories"
)

type repository struct {
	db      *gorm.DB
	lead    repositories.LeadRepository
	profile repositories.ProfileRepository
}

// NewRepository builds the PostgreSQL-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:      db,
		lead:    NewLeadPostgreSQL(db),
		profile: NewProfilePostgreSQL(db),
	}
}

func (r *repository) Lead() repositories.LeadRepository {
	return r.lead
}

func (r *repository) Profile() repositories.ProfileRepository {
	return r.profile
}

// WithTransaction runs fn against a repository bound to a single
// transaction; any error rolls the whole thing back.
func (r *repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
