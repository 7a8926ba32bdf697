package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medvoyage/lead-service/internal/models"
	"github.com/medvoyage/lead-service/internal/repositories"
	"github.com/medvoyage/lead-service/internal/services"
	"github.com/medvoyage/lead-service/internal/utils"
)

type LeadHandler struct {
	BaseHandler
	leadService   services.LeadService
	exportService services.ExportService
	validator     *utils.Validator
}

func NewLeadHandler(
	leadService services.LeadService,
	exportService services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *LeadHandler {
	return &LeadHandler{
		BaseHandler:   NewBaseHandler(logger),
		leadService:   leadService,
		exportService: exportService,
		validator:     validator,
	}
}

// ===== REQUEST STRUCTURES =====

type UpdateLeadStatusRequest struct {
	Status models.LeadStatus `json:"status" binding:"required"`
}

type AssignLeadRequest struct {
	HospitalID string `json:"hospital_id" binding:"required"`
}

// ===== LEAD OPERATIONS =====

// ListLeads returns the leads visible to the caller, filtered and paged.
func (h *LeadHandler) ListLeads(c *gin.Context) {
	filters := parseLeadFilters(c)

	leads, total, err := h.leadService.List(c.Request.Context(), filters, CurrentActor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PagedResponse{Data: leads, Total: total})
}

// GetLead returns a single lead by id.
func (h *LeadHandler) GetLead(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	lead, err := h.leadService.GetByID(c.Request.Context(), id, CurrentActor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// UpdateLeadStatus moves a lead through the pipeline.
func (h *LeadHandler) UpdateLeadStatus(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	lead, err := h.leadService.UpdateStatus(c.Request.Context(), id, req.Status, CurrentActor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// AssignLead hands a lead to a hospital partner.
func (h *LeadHandler) AssignLead(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.leadService.Assign(c.Request.Context(), id, req.HospitalID, CurrentActor(c)); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Lead assigned"})
}

// GetLeadStats returns the admin dashboard aggregates.
func (h *LeadHandler) GetLeadStats(c *gin.Context) {
	stats, err := h.leadService.GetStats(c.Request.Context(), CurrentActor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ===== EXPORT =====

// ExportLeads streams the filtered lead list as CSV or Excel.
func (h *LeadHandler) ExportLeads(c *gin.Context) {
	filters := parseLeadFilters(c)
	actor := CurrentActor(c)
	format := c.DefaultQuery("format", "csv")

	var (
		data        []byte
		err         error
		contentType string
		ext         string
	)
	switch format {
	case "csv":
		data, err = h.exportService.ExportLeadsToCSV(c.Request.Context(), filters, actor)
		contentType = "text/csv"
		ext = "csv"
	case "xlsx":
		data, err = h.exportService.ExportLeadsToExcel(c.Request.Context(), filters, actor)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		ext = "xlsx"
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: format,
		})
		return
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leads-%s.%s", time.Now().Format("2006-01-02"), ext)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// ===== QUERY PARSING =====

func parseLeadFilters(c *gin.Context) repositories.LeadFilters {
	filters := repositories.LeadFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if v := c.Query("status"); v != "" {
		status := models.LeadStatus(v)
		filters.Status = &status
	}
	if v := c.Query("treatment_category"); v != "" {
		filters.TreatmentCategory = &v
	}
	if v := c.Query("urgency"); v != "" {
		filters.Urgency = &v
	}
	if v := c.Query("source"); v != "" {
		filters.Source = &v
	}
	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.DateFrom = &t
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.DateTo = &t
		}
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		filters.Limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = v
	}

	return filters
}
