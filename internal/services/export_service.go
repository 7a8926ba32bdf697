package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/medvoyage/lead-service/internal/models"
	"github.com/medvoyage/lead-service/internal/repositories"
)

// ExportService renders lead listings as downloadable files for the admin
// dashboard.
type ExportService interface {
	ExportLeadsToCSV(ctx context.Context, filters repositories.LeadFilters, actor Actor) ([]byte, error)
	ExportLeadsToExcel(ctx context.Context, filters repositories.LeadFilters, actor Actor) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportLeadsToCSV(ctx context.Context, filters repositories.LeadFilters, actor Actor) ([]byte, error) {
	leads, err := s.getLeadsForExport(ctx, filters, actor)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, lead := range leads {
		row := leadToRow(lead)
		record := make([]string, len(row))
		for i, value := range row {
			record[i] = fmt.Sprint(value)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.Info("Exported leads to CSV", "count", len(leads), "user_id", actor.UserID)
	return buf.Bytes(), nil
}

func (s *exportService) ExportLeadsToExcel(ctx context.Context, filters repositories.LeadFilters, actor Actor) ([]byte, error) {
	leads, err := s.getLeadsForExport(ctx, filters, actor)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Leads"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve header cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, lead := range leads {
		for colIndex, value := range leadToRow(lead) {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve data cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported leads to Excel", "count", len(leads), "user_id", actor.UserID)
	return buf.Bytes(), nil
}

func (s *exportService) getLeadsForExport(ctx context.Context, filters repositories.LeadFilters, actor Actor) ([]*models.Lead, error) {
	if actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actor.UserID, "", "lead", "export", "admin only")
	}

	// Exports ignore the caller's pagination and page through everything
	// the filters match, up to a hard cap.
	filters.Limit = exportPageSize
	filters.Offset = 0

	var all []*models.Lead
	for {
		leads, total, err := s.repo.Lead().List(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list leads for export: %w", err)
		}
		all = append(all, leads...)
		if len(leads) == 0 || int64(len(all)) >= total || len(all) >= exportMaxRows {
			return all, nil
		}
		filters.Offset += len(leads)
	}
}

const (
	exportPageSize = 200
	exportMaxRows  = 50000
)

var exportHeaders = []string{
	"ID", "Email", "Mobile", "Full Name", "Treatment Category", "Urgency",
	"Previous Diagnosis", "Destinations", "Budget", "Passport Country",
	"Status", "Assigned To", "Source", "UTM Source", "Created At",
}

func leadToRow(lead *models.Lead) []interface{} {
	return []interface{}{
		lead.ID,
		lead.Email,
		deref(lead.Mobile),
		deref(lead.FullName),
		lead.TreatmentCategory,
		deref(lead.Urgency),
		deref(lead.PreviousDiagnosis),
		strings.Join(lead.DestinationList(), ", "),
		deref(lead.Budget),
		deref(lead.PassportCountry),
		string(lead.Status),
		deref(lead.AssignedTo),
		lead.Source,
		deref(lead.UTMSource),
		lead.CreatedAt.Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
