package events

import (
	"time"

	"github.com/medvoyage/lead-service/internal/models"
)

// EventType represents the lead lifecycle events downstream consumers
// (notification mailer, CRM sync) subscribe to.
type EventType string

const (
	EventLeadCreated       EventType = "lead.created"
	EventLeadStatusChanged EventType = "lead.status_changed"
	EventLeadAssigned      EventType = "lead.assigned"
)

// LeadEvent is the envelope for all lead events.
type LeadEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type LeadCreatedEvent struct {
	LeadID            string  `json:"lead_id"`
	Email             string  `json:"email"`
	TreatmentCategory string  `json:"treatment_category"`
	Urgency           *string `json:"urgency,omitempty"`
	Source            string  `json:"source"`
	HasPrescription   bool    `json:"has_prescription"`
}

type LeadStatusChangedEvent struct {
	LeadID    string            `json:"lead_id"`
	Email     string            `json:"email"`
	OldStatus models.LeadStatus `json:"old_status"`
	NewStatus models.LeadStatus `json:"new_status"`
	ChangedBy string            `json:"changed_by"`
}

type LeadAssignedEvent struct {
	LeadID     string `json:"lead_id"`
	HospitalID string `json:"hospital_id"`
	AssignedBy string `json:"assigned_by"`
}
