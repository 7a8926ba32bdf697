package services

import (
	"log/slog"
	"time"

	"github.com/medvoyage/lead-service/internal/cache"
	"github.com/medvoyage/lead-service/internal/events"
	"github.com/medvoyage/lead-service/internal/questionnaire"
	"github.com/medvoyage/lead-service/internal/repositories"
	"github.com/medvoyage/lead-service/internal/storage"
	"github.com/medvoyage/lead-service/internal/utils"
)

// ServiceManager aggregates the service layer behind one handle for the
// HTTP wiring.
type ServiceManager interface {
	Questionnaire() QuestionnaireService
	Lead() LeadService
	Export() ExportService
	Profile() ProfileService
}

type serviceManager struct {
	questionnaire QuestionnaireService
	lead          LeadService
	export        ExportService
	profile       ProfileService
}

// ManagerDeps collects the collaborators every service draws from.
type ManagerDeps struct {
	Repo        repositories.Repository
	Graph       *questionnaire.Graph
	Sessions    cache.SessionStore
	Attachments storage.AttachmentStore
	Publisher   events.EventPublisher
	Logger      *slog.Logger
	Validator   *utils.Validator
	SessionTTL  time.Duration
}

func NewServiceManager(deps ManagerDeps) ServiceManager {
	lead := NewLeadService(deps.Repo, deps.Publisher, deps.Logger, deps.Validator)
	return &serviceManager{
		questionnaire: NewQuestionnaireService(deps.Graph, deps.Sessions, deps.Attachments, lead, deps.Logger, deps.SessionTTL),
		lead:          lead,
		export:        NewExportService(deps.Repo, deps.Logger),
		profile:       NewProfileService(deps.Repo, deps.Logger),
	}
}

func (m *serviceManager) Questionnaire() QuestionnaireService { return m.questionnaire }
func (m *serviceManager) Lead() LeadService                   { return m.lead }
func (m *serviceManager) Export() ExportService               { return m.export }
func (m *serviceManager) Profile() ProfileService             { return m.profile }
