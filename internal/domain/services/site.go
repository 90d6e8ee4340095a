package services

import (
	"context"

	"contentpilot/internal/domain/models"
)

// CreateSiteRequest represents a request to create a site
type CreateSiteRequest struct {
	Name           string              `json:"name"`
	URL            string              `json:"url"`
	SitemapURL     *string             `json:"sitemap_url"`
	Type           models.SiteType     `json:"type"`
	Category       models.SiteCategory `json:"site_type"`
	TargetAudience []string            `json:"target_audience"`
	WPUsername     *string             `json:"wp_username"`
	WPAppPassword  *string             `json:"wp_app_password"`
	Categories     []string            `json:"categories"`
	AutoPublish    bool                `json:"auto_publish"`
}

// UpdateSiteRequest is a partial update; nil fields are left unchanged.
type UpdateSiteRequest struct {
	Name           *string              `json:"name"`
	URL            *string              `json:"url"`
	SitemapURL     *string              `json:"sitemap_url"`
	Type           *models.SiteType     `json:"type"`
	Category       *models.SiteCategory `json:"site_type"`
	TargetAudience []string             `json:"target_audience"`
	WPUsername     *string              `json:"wp_username"`
	WPAppPassword  *string              `json:"wp_app_password"`
	Categories     []string             `json:"categories"`
	AutoPublish    *bool                `json:"auto_publish"`
}

// SiteFilter narrows an owner's site list.
type SiteFilter struct {
	Status models.SiteStatus
	Type   models.SiteType
	Query  string
}

// SiteService defines business logic operations for sites
type SiteService interface {
	CreateSite(ctx context.Context, ownerID string, req *CreateSiteRequest) (*models.Site, error)
	GetSite(ctx context.Context, ownerID, id string) (*models.Site, error)
	ListSites(ctx context.Context, ownerID string, filter SiteFilter) ([]models.Site, error)
	// UpdateSite refreshes the site name snapshot on the owner's projects
	UpdateSite(ctx context.Context, ownerID, id string, req *UpdateSiteRequest) (*models.Site, error)
	// DeleteSite fails with a conflict while projects reference the site
	DeleteSite(ctx context.Context, ownerID, id string) error
	// SyncSite checks WordPress credentials and pulls categories
	SyncSite(ctx context.Context, ownerID, id string) (*models.Site, error)
}
