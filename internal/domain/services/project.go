package services

import (
	"context"

	"contentpilot/internal/domain/models"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name      string               `json:"name"`
	SiteID    string               `json:"site_id"`
	PersonaID *string              `json:"persona_id"`
	Status    models.ProjectStatus `json:"status"`
}

// UpdateProjectRequest is a partial update. PersonaID uses tri-state semantics:
// absent leaves it unchanged, null clears it.
type UpdateProjectRequest struct {
	Name      *string
	SiteID    *string
	PersonaID OptionalID
	Status    *models.ProjectStatus
}

// OptionalID tracks presence and value of a nullable reference in a PATCH request.
type OptionalID struct {
	Present bool
	Value   *string
}

// ProjectFilter narrows an owner's project list.
type ProjectFilter struct {
	Status    models.ProjectStatus
	SiteID    string
	PersonaID string
	Query     string
}

// ProjectService defines business logic operations for projects
type ProjectService interface {
	CreateProject(ctx context.Context, ownerID string, req *CreateProjectRequest) (*models.Project, error)
	GetProject(ctx context.Context, ownerID, id string) (*models.Project, error)
	// ListProjects returns the owner's projects, most recently updated first
	ListProjects(ctx context.Context, ownerID string, filter ProjectFilter) ([]models.Project, error)
	UpdateProject(ctx context.Context, ownerID, id string, req *UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, ownerID, id string) error
}
