package content

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"contentpilot/internal/config"
	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
	"contentpilot/internal/domain/services"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo repositories.ProjectRepository
	siteRepo    repositories.SiteRepository
	personaRepo repositories.PersonaRepository
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	siteRepo repositories.SiteRepository,
	personaRepo repositories.PersonaRepository,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		siteRepo:    siteRepo,
		personaRepo: personaRepo,
		logger:      logger,
	}
}

// projectInput is the validated shape shared by create and update.
type projectInput struct {
	Name   string               `json:"name"`
	SiteID string               `json:"site_id"`
	Status models.ProjectStatus `json:"status"`
}

func (in *projectInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&in.SiteID, validation.Required),
		validation.Field(&in.Status, validation.Required, validation.In(
			models.ProjectStatusDraft, models.ProjectStatusActive, models.ProjectStatusCompleted,
		)),
	)
}

// resolveRefs loads the referenced site and optional persona for the owner.
func (s *projectService) resolveRefs(ctx context.Context, ownerID, siteID string, personaID *string) (models.SiteRef, *models.PersonaRef, error) {
	site, err := s.siteRepo.GetByID(ctx, siteID, ownerID)
	if err != nil {
		return models.SiteRef{}, nil, referenceError(err, "site_id", "site not found")
	}
	ref := models.SiteRef{ID: site.ID, Name: site.Name}

	if personaID == nil {
		return ref, nil, nil
	}
	persona, err := s.personaRepo.GetByID(ctx, *personaID, ownerID)
	if err != nil {
		return models.SiteRef{}, nil, referenceError(err, "persona_id", "persona not found")
	}
	return ref, persona.Ref(), nil
}

// CreateProject creates a new project with article_count 0.
func (s *projectService) CreateProject(ctx context.Context, ownerID string, req *services.CreateProjectRequest) (*models.Project, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	in := &projectInput{
		Name:   strings.TrimSpace(req.Name),
		SiteID: strings.TrimSpace(req.SiteID),
		Status: req.Status,
	}
	if in.Status == "" {
		in.Status = models.ProjectStatusDraft
	}
	if err := in.Validate(); err != nil {
		return nil, domain.ValidationFailed(err)
	}

	siteRef, personaRef, err := s.resolveRefs(ctx, ownerID, in.SiteID, trimPtr(req.PersonaID))
	if err != nil {
		return nil, err
	}

	ts := now()
	project := &models.Project{
		UserID:       ownerID,
		Name:         in.Name,
		Site:         siteRef,
		Persona:      personaRef,
		Status:       in.Status,
		ArticleCount: 0,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"id", project.ID,
		"name", project.Name,
		"site_id", project.Site.ID,
		"user_id", ownerID,
	)

	return project, nil
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, ownerID, id string) (*models.Project, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.projectRepo.GetByID(ctx, id, ownerID)
}

// ListProjects retrieves the owner's projects, most recently updated first
func (s *projectService) ListProjects(ctx context.Context, ownerID string, filter services.ProjectFilter) ([]models.Project, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FilterProjects(projects, filter), nil
}

// UpdateProject applies a partial update. Changing the site or persona
// re-reads the referenced record so the snapshot is current.
func (s *projectService) UpdateProject(ctx context.Context, ownerID, id string, req *services.UpdateProjectRequest) (*models.Project, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	in := &projectInput{Name: project.Name, SiteID: project.Site.ID, Status: project.Status}
	if req.Name != nil {
		in.Name = strings.TrimSpace(*req.Name)
	}
	if req.SiteID != nil {
		in.SiteID = strings.TrimSpace(*req.SiteID)
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	if err := in.Validate(); err != nil {
		return nil, domain.ValidationFailed(err)
	}

	var personaID *string
	if project.Persona != nil {
		personaID = &project.Persona.ID
	}
	if req.PersonaID.Present {
		personaID = trimPtr(req.PersonaID.Value)
	}

	siteRef, personaRef, err := s.resolveRefs(ctx, ownerID, in.SiteID, personaID)
	if err != nil {
		return nil, err
	}

	project.Name = in.Name
	project.Status = in.Status
	project.Site = siteRef
	project.Persona = personaRef
	project.UpdatedAt = now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated",
		"id", project.ID,
		"name", project.Name,
		"user_id", ownerID,
	)

	return project, nil
}

// DeleteProject deletes a project and, by cascade, its articles
func (s *projectService) DeleteProject(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	// Verify project exists first (provides better error message)
	if _, err := s.projectRepo.GetByID(ctx, id, ownerID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.logger.Info("project deleted",
		"id", id,
		"user_id", ownerID,
	)

	return nil
}
