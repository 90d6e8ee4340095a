package handler

import (
	"log/slog"
	"net/http"

	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/httputil"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	projectService services.ProjectService
	logger         *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService services.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// updateProjectBody is the PATCH body; persona_id null detaches the persona.
type updateProjectBody struct {
	Name      *string                 `json:"name"`
	SiteID    *string                 `json:"site_id"`
	PersonaID httputil.OptionalString `json:"persona_id"`
	Status    *models.ProjectStatus   `json:"status"`
}

// ListProjects retrieves all projects for the user
// GET /api/projects?status=&site_id=&persona_id=&q=
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	filter := services.ProjectFilter{
		Status:    models.ProjectStatus(httputil.QueryParam(r, "status")),
		SiteID:    httputil.QueryParam(r, "site_id"),
		PersonaID: httputil.QueryParam(r, "persona_id"),
		Query:     httputil.QueryParam(r, "q"),
	}

	projects, err := h.projectService.ListProjects(r.Context(), httputil.GetUserID(r), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, projects)
}

// CreateProject creates a new project
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProjectRequest
	if !parseBody(w, r, &req) {
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, project)
}

// GetProject retrieves a project by ID
// GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// UpdateProject updates a project
// PATCH /api/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var body updateProjectBody
	if !parseBody(w, r, &body) {
		return
	}

	req := &services.UpdateProjectRequest{
		Name:   body.Name,
		SiteID: body.SiteID,
		PersonaID: services.OptionalID{
			Present: body.PersonaID.Present,
			Value:   body.PersonaID.Value,
		},
		Status: body.Status,
	}

	project, err := h.projectService.UpdateProject(r.Context(), httputil.GetUserID(r), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// DeleteProject deletes a project
// DELETE /api/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
