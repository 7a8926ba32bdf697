package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/medvoyage/lead-service/internal/models"
	"github.com/medvoyage/lead-service/internal/repositories"
)

type LeadPostgreSQL struct {
	db *gorm.DB
}

func NewLeadPostgreSQL(db *gorm.DB) repositories.LeadRepository {
	return &LeadPostgreSQL{db: db}
}

// Create inserts a lead as a single atomic write. The id is assigned by the
// caller so a retried submission reuses the same id and stays idempotent.
func (l *LeadPostgreSQL) Create(ctx context.Context, lead *models.Lead) error {
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	err := l.db.WithContext(ctx).Create(lead).Error
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (l *LeadPostgreSQL) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	err := l.db.WithContext(ctx).First(&lead, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (l *LeadPostgreSQL) GetByEmail(ctx context.Context, email string, filters repositories.LeadFilters) ([]*models.Lead, int64, error) {
	query := l.db.WithContext(ctx).Model(&models.Lead{}).Where("email = ?", email)
	return l.fetch(query, filters)
}

func (l *LeadPostgreSQL) List(ctx context.Context, filters repositories.LeadFilters) ([]*models.Lead, int64, error) {
	query := l.db.WithContext(ctx).Model(&models.Lead{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.TreatmentCategory != nil {
		query = query.Where("treatment_category = ?", *filters.TreatmentCategory)
	}
	if filters.Urgency != nil {
		query = query.Where("urgency = ?", *filters.Urgency)
	}
	if filters.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filters.AssignedTo)
	}
	if filters.Source != nil {
		query = query.Where("source = ?", *filters.Source)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	return l.fetch(query, filters)
}

func (l *LeadPostgreSQL) fetch(query *gorm.DB, filters repositories.LeadFilters) ([]*models.Lead, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	sortBy := filters.SortBy
	switch sortBy {
	case "created_at", "updated_at", "urgency", "status":
	default:
		sortBy = "created_at"
	}
	order := "DESC"
	if filters.SortOrder == "asc" {
		order = "ASC"
	}

	limit := filters.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var leads []*models.Lead
	err := query.
		Order(fmt.Sprintf("%s %s", sortBy, order)).
		Limit(limit).
		Offset(filters.Offset).
		Find(&leads).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}

	return leads, total, nil
}

func (l *LeadPostgreSQL) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) error {
	result := l.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update lead status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (l *LeadPostgreSQL) Assign(ctx context.Context, id string, hospitalID string) error {
	result := l.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id = ?", id).
		Update("assigned_to", hospitalID)
	if result.Error != nil {
		return fmt.Errorf("failed to assign lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft deletes a lead
func (l *LeadPostgreSQL) Delete(ctx context.Context, id string) error {
	result := l.db.WithContext(ctx).Delete(&models.Lead{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetStats aggregates the dashboard counters in a handful of queries.
func (l *LeadPostgreSQL) GetStats(ctx context.Context) (*repositories.LeadStats, error) {
	stats := &repositories.LeadStats{
		StatusBreakdown: make(map[models.LeadStatus]int),
		ByCategory:      make(map[string]int),
	}

	type countRow struct {
		Key   string
		Count int
	}

	var statusRows []countRow
	err := l.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate lead statuses: %w", err)
	}
	for _, row := range statusRows {
		stats.StatusBreakdown[models.LeadStatus(row.Key)] = row.Count
		stats.TotalLeads += row.Count
	}

	var categoryRows []countRow
	err = l.db.WithContext(ctx).
		Model(&models.Lead{}).
		Select("treatment_category AS key, COUNT(*) AS count").
		Group("treatment_category").
		Scan(&categoryRows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate lead categories: %w", err)
	}
	for _, row := range categoryRows {
		stats.ByCategory[row.Key] = row.Count
	}

	var recent int64
	err = l.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("created_at >= ?", time.Now().AddDate(0, 0, -7)).
		Count(&recent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recent leads: %w", err)
	}
	stats.NewLast7Days = int(recent)

	if stats.TotalLeads > 0 {
		converted := stats.StatusBreakdown[models.LeadStatusConverted]
		stats.ConversionRate = float64(converted) / float64(stats.TotalLeads)
	}

	return stats, nil
}
