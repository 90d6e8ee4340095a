package handler

import (
	"log/slog"
	"net/http"

	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/httputil"
)

// SiteHandler handles site HTTP requests
type SiteHandler struct {
	siteService services.SiteService
	logger      *slog.Logger
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(siteService services.SiteService, logger *slog.Logger) *SiteHandler {
	return &SiteHandler{
		siteService: siteService,
		logger:      logger,
	}
}

// ListSites retrieves the user's sites
// GET /api/sites?status=&type=&q=
func (h *SiteHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	filter := services.SiteFilter{
		Status: models.SiteStatus(httputil.QueryParam(r, "status")),
		Type:   models.SiteType(httputil.QueryParam(r, "type")),
		Query:  httputil.QueryParam(r, "q"),
	}

	sites, err := h.siteService.ListSites(r.Context(), userID, filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sites)
}

// CreateSite creates a new site
// POST /api/sites
func (h *SiteHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CreateSiteRequest
	if !parseBody(w, r, &req) {
		return
	}

	site, err := h.siteService.CreateSite(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, site)
}

// GetSite retrieves a site by ID
// GET /api/sites/{id}
func (h *SiteHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Site ID")
	if !ok {
		return
	}

	site, err := h.siteService.GetSite(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, site)
}

// UpdateSite updates a site
// PATCH /api/sites/{id}
func (h *SiteHandler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Site ID")
	if !ok {
		return
	}

	var req services.UpdateSiteRequest
	if !parseBody(w, r, &req) {
		return
	}

	site, err := h.siteService.UpdateSite(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, site)
}

// DeleteSite deletes a site that no project references
// DELETE /api/sites/{id}
func (h *SiteHandler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Site ID")
	if !ok {
		return
	}

	if err := h.siteService.DeleteSite(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// SyncSite checks the WordPress connection and refreshes categories
// POST /api/sites/{id}/sync
func (h *SiteHandler) SyncSite(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Site ID")
	if !ok {
		return
	}

	site, err := h.siteService.SyncSite(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("site synced", "site_id", id, "status", site.Status)
	httputil.RespondJSON(w, http.StatusOK, site)
}
