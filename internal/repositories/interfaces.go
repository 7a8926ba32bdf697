package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/medvoyage/lead-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type LeadFilters struct {
	Status            *models.LeadStatus `json:"status"`
	TreatmentCategory *string            `json:"treatment_category"`
	Urgency           *string            `json:"urgency"`
	AssignedTo        *string            `json:"assigned_to"`
	Source            *string            `json:"source"`
	DateFrom          *time.Time         `json:"date_from"`
	DateTo            *time.Time         `json:"date_to"`
	Limit             int                `json:"limit"`
	Offset            int                `json:"offset"`
	SortBy            string             `json:"sort_by"`    // "created_at", "updated_at", "urgency"
	SortOrder         string             `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED STATISTICS STRUCTS =====

type LeadStats struct {
	TotalLeads      int                       `json:"total_leads"`
	StatusBreakdown map[models.LeadStatus]int `json:"status_breakdown"`
	ByCategory      map[string]int            `json:"by_category"`
	NewLast7Days    int                       `json:"new_last_7_days"`
	ConversionRate  float64                   `json:"conversion_rate"`
}

// ===== REPOSITORY INTERFACES =====

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	GetByEmail(ctx context.Context, email string, filters LeadFilters) ([]*models.Lead, int64, error)
	List(ctx context.Context, filters LeadFilters) ([]*models.Lead, int64, error)
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error
	Assign(ctx context.Context, id string, hospitalID string) error
	Delete(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*LeadStats, error)
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
}

// Repository aggregates the per-model repositories behind one handle.
type Repository interface {
	Lead() LeadRepository
	Profile() ProfileRepository
	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err is the store's "no rows" condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
