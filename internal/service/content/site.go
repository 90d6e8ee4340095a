package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"contentpilot/internal/config"
	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
	"contentpilot/internal/domain/services"
)

// siteService implements the SiteService interface
type siteService struct {
	siteRepo    repositories.SiteRepository
	projectRepo repositories.ProjectRepository
	txManager   repositories.TransactionManager
	wordpress   services.WordPressClient
	logger      *slog.Logger
}

// NewSiteService creates a new site service
func NewSiteService(
	siteRepo repositories.SiteRepository,
	projectRepo repositories.ProjectRepository,
	txManager repositories.TransactionManager,
	wordpress services.WordPressClient,
	logger *slog.Logger,
) services.SiteService {
	return &siteService{
		siteRepo:    siteRepo,
		projectRepo: projectRepo,
		txManager:   txManager,
		wordpress:   wordpress,
		logger:      logger,
	}
}

// siteInput is the validated shape shared by create and update.
type siteInput struct {
	Name           string              `json:"name"`
	URL            string              `json:"url"`
	SitemapURL     *string             `json:"sitemap_url"`
	Type           models.SiteType     `json:"type"`
	Category       models.SiteCategory `json:"site_type"`
	TargetAudience []string            `json:"target_audience"`
	WPUsername     *string             `json:"wp_username"`
	WPAppPassword  *string             `json:"wp_app_password"`
	Categories     []string            `json:"categories"`
}

func (in *siteInput) Validate() error {
	isWordPress := in.Type == models.SiteTypeWordPress
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&in.URL,
			validation.When(isWordPress, validation.Required),
			validation.Match(httpURL).Error("must start with http:// or https://"),
		),
		validation.Field(&in.SitemapURL, validation.Match(httpURL).Error("must start with http:// or https://")),
		validation.Field(&in.Type, validation.Required, validation.In(models.SiteTypeWordPress, models.SiteTypeCustom)),
		validation.Field(&in.Category, validation.Required, validation.In(
			models.SiteCategoryEcommerce, models.SiteCategoryBlog, models.SiteCategoryCorporate,
			models.SiteCategoryPortfolio, models.SiteCategoryEducational, models.SiteCategoryNews,
		)),
		validation.Field(&in.TargetAudience, listRules()...),
		validation.Field(&in.WPUsername, validation.When(isWordPress, validation.Required)),
		validation.Field(&in.WPAppPassword, validation.When(isWordPress, validation.Required)),
		validation.Field(&in.Categories, listRules()...),
	)
}

func inputFromSite(site *models.Site) *siteInput {
	return &siteInput{
		Name:           site.Name,
		URL:            site.URL,
		SitemapURL:     site.SitemapURL,
		Type:           site.Type,
		Category:       site.Category,
		TargetAudience: site.TargetAudience,
		WPUsername:     site.WPUsername,
		WPAppPassword:  site.WPAppPassword,
		Categories:     site.Categories,
	}
}

// CreateSite validates and stores a new site with status pending.
func (s *siteService) CreateSite(ctx context.Context, ownerID string, req *services.CreateSiteRequest) (*models.Site, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	ts := now()
	site := &models.Site{
		UserID:         ownerID,
		Name:           strings.TrimSpace(req.Name),
		URL:            strings.TrimSpace(req.URL),
		SitemapURL:     trimPtr(req.SitemapURL),
		Type:           req.Type,
		Category:       req.Category,
		TargetAudience: cleanList(req.TargetAudience),
		WPUsername:     trimPtr(req.WPUsername),
		WPAppPassword:  trimPtr(req.WPAppPassword),
		Status:         models.SiteStatusPending,
		ArticlesCount:  0,
		Categories:     cleanList(req.Categories),
		AutoPublish:    req.AutoPublish,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if site.Category == "" {
		site.Category = models.SiteCategoryBlog
	}

	if err := inputFromSite(site).Validate(); err != nil {
		return nil, domain.ValidationFailed(err)
	}

	if err := s.siteRepo.Create(ctx, site); err != nil {
		return nil, err
	}

	s.logger.Info("site created",
		"id", site.ID,
		"name", site.Name,
		"type", site.Type,
		"user_id", ownerID,
	)

	return site, nil
}

// GetSite retrieves a site by ID
func (s *siteService) GetSite(ctx context.Context, ownerID, id string) (*models.Site, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.siteRepo.GetByID(ctx, id, ownerID)
}

// ListSites returns the owner's sites matching filter.
func (s *siteService) ListSites(ctx context.Context, ownerID string, filter services.SiteFilter) ([]models.Site, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	sites, err := s.siteRepo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FilterSites(sites, filter), nil
}

// UpdateSite applies a partial update and refreshes project snapshots when the name changes.
func (s *siteService) UpdateSite(ctx context.Context, ownerID, id string, req *services.UpdateSiteRequest) (*models.Site, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	site, err := s.siteRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	oldName := site.Name

	if req.Name != nil {
		site.Name = strings.TrimSpace(*req.Name)
	}
	if req.URL != nil {
		site.URL = strings.TrimSpace(*req.URL)
	}
	if req.SitemapURL != nil {
		site.SitemapURL = trimPtr(req.SitemapURL)
	}
	if req.Type != nil {
		site.Type = *req.Type
	}
	if req.Category != nil {
		site.Category = *req.Category
	}
	if req.TargetAudience != nil {
		site.TargetAudience = cleanList(req.TargetAudience)
	}
	// an empty string clears the stored credential
	if req.WPUsername != nil {
		site.WPUsername = trimPtr(req.WPUsername)
	}
	if req.WPAppPassword != nil {
		site.WPAppPassword = trimPtr(req.WPAppPassword)
	}
	if req.Categories != nil {
		site.Categories = cleanList(req.Categories)
	}
	if req.AutoPublish != nil {
		site.AutoPublish = *req.AutoPublish
	}

	if err := inputFromSite(site).Validate(); err != nil {
		return nil, domain.ValidationFailed(err)
	}
	site.UpdatedAt = now()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.siteRepo.Update(txCtx, site); err != nil {
			return err
		}
		if site.Name == oldName {
			return nil
		}
		n, err := s.projectRepo.RefreshSiteName(txCtx, ownerID, site.ID, site.Name)
		if err != nil {
			return fmt.Errorf("refresh site name: %w", err)
		}
		s.logger.Debug("site name snapshots refreshed", "site_id", site.ID, "projects", n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("site updated",
		"id", site.ID,
		"name", site.Name,
		"user_id", ownerID,
	)

	return site, nil
}

// DeleteSite deletes a site that no project references.
func (s *siteService) DeleteSite(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	if _, err := s.siteRepo.GetByID(ctx, id, ownerID); err != nil {
		return err
	}

	n, err := s.projectRepo.CountBySite(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("site is used by %d project(s)", n),
			ResourceType: "site",
			ResourceID:   id,
		}
	}

	if err := s.siteRepo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.logger.Info("site deleted",
		"id", id,
		"user_id", ownerID,
	)

	return nil
}

// SyncSite checks the WordPress credentials and refreshes the category list.
// A failed check is recorded on the site (status error) rather than returned.
func (s *siteService) SyncSite(ctx context.Context, ownerID, id string) (*models.Site, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	site, err := s.siteRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if site.Type != models.SiteTypeWordPress {
		return nil, domain.FieldError("type", "only WordPress sites can be synchronized")
	}
	creds := site.WordPressCredentials()
	if creds == nil {
		return nil, domain.FieldError("wp_app_password", "WordPress credentials are required")
	}

	status := models.SiteStatusConnected
	var categories []string

	if _, err := s.wordpress.CurrentUser(ctx, *creds); err != nil {
		s.logger.Warn("wordpress connection check failed",
			"site_id", site.ID,
			"user_id", ownerID,
			"error", err,
		)
		status = models.SiteStatusError
	} else {
		cats, err := s.wordpress.ListCategories(ctx, *creds)
		if err != nil {
			s.logger.Warn("wordpress categories fetch failed", "site_id", site.ID, "error", err)
		} else {
			categories = make([]string, 0, len(cats))
			for _, c := range cats {
				categories = append(categories, c.Name)
			}
		}
	}

	if err := s.siteRepo.UpdateSyncState(ctx, site.ID, ownerID, status, categories, now()); err != nil {
		return nil, err
	}

	s.logger.Info("site synchronized",
		"id", site.ID,
		"status", status,
		"categories", len(categories),
		"user_id", ownerID,
	)

	return s.siteRepo.GetByID(ctx, site.ID, ownerID)
}
