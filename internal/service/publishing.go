package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/service/markup"
)

// PublishingService pushes articles to their project's site.
type PublishingService struct {
	articleRepo  repositories.ArticleRepository
	projectRepo  repositories.ProjectRepository
	siteRepo     repositories.SiteRepository
	settingsRepo repositories.UserSettingsRepository
	txManager    repositories.TransactionManager
	wordpress    services.WordPressClient
	converter    *markup.Converter
	events       services.EventPublisher
	logger       *slog.Logger
}

var _ services.ArticlePublisher = (*PublishingService)(nil)

// NewPublishingService creates a new publishing service
func NewPublishingService(
	articleRepo repositories.ArticleRepository,
	projectRepo repositories.ProjectRepository,
	siteRepo repositories.SiteRepository,
	settingsRepo repositories.UserSettingsRepository,
	txManager repositories.TransactionManager,
	wordpress services.WordPressClient,
	events services.EventPublisher,
	logger *slog.Logger,
) *PublishingService {
	return &PublishingService{
		articleRepo:  articleRepo,
		projectRepo:  projectRepo,
		siteRepo:     siteRepo,
		settingsRepo: settingsRepo,
		txManager:    txManager,
		wordpress:    wordpress,
		converter:    markup.NewConverter(),
		events:       events,
		logger:       logger,
	}
}

// PublishArticle publishes the article now, or schedules it when scheduleAt
// (or the article's own publish date, for scheduled articles) is in the future.
// Custom sites only record the status change.
func (s *PublishingService) PublishArticle(ctx context.Context, ownerID, articleID string, scheduleAt *time.Time) (*models.Article, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: missing owner", domain.ErrUnauthorized)
	}

	article, err := s.articleRepo.GetByID(ctx, articleID, ownerID)
	if err != nil {
		return nil, err
	}
	switch article.Status {
	case models.ArticleStatusGeneration:
		return nil, &domain.ConflictError{Message: "article is being generated", ResourceType: "article", ResourceID: article.ID}
	case models.ArticleStatusPublished:
		return nil, &domain.ConflictError{Message: "article is already published", ResourceType: "article", ResourceID: article.ID}
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, domain.FieldError("content", "cannot publish an empty article")
	}

	project, err := s.projectRepo.GetByID(ctx, article.ProjectID, ownerID)
	if err != nil {
		return nil, err
	}
	site, err := s.siteRepo.GetByID(ctx, project.Site.ID, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	// a scheduled article was already counted on its site when it was scheduled
	counted := article.Status == models.ArticleStatusScheduled
	if scheduleAt == nil && counted {
		scheduleAt = article.PublishDate
	}
	scheduled := scheduleAt != nil && scheduleAt.After(now)

	if site.Type == models.SiteTypeWordPress {
		if err := s.pushToWordPress(ctx, ownerID, site, article, scheduled, scheduleAt, now); err != nil {
			return nil, err
		}
	}

	if scheduled {
		at := scheduleAt.UTC()
		article.Status = models.ArticleStatusScheduled
		article.PublishDate = &at
	} else {
		article.Status = models.ArticleStatusPublished
		article.PublishDate = &now
	}
	article.UpdatedAt = now

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.articleRepo.Update(txCtx, article); err != nil {
			return err
		}
		if counted {
			return nil
		}
		return s.siteRepo.RecordPublish(txCtx, site.ID, ownerID, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("article published",
		"id", article.ID,
		"site_id", site.ID,
		"site_type", site.Type,
		"status", article.Status,
		"user_id", ownerID,
	)

	event := models.Event{
		Type:       models.EventArticlePublished,
		UserID:     ownerID,
		ArticleID:  article.ID,
		ProjectID:  article.ProjectID,
		Status:     string(article.Status),
		OccurredAt: now,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "type", event.Type, "article_id", article.ID, "error", err)
	}

	return article, nil
}

// pushToWordPress creates the article's post, or updates the post created when
// the article was scheduled.
func (s *PublishingService) pushToWordPress(ctx context.Context, ownerID string, site *models.Site, article *models.Article, scheduled bool, scheduleAt *time.Time, now time.Time) error {
	creds, err := s.credentials(ctx, ownerID, site)
	if err != nil {
		return err
	}

	html, err := s.converter.MarkdownToHTML(article.Content)
	if err != nil {
		return fmt.Errorf("render article: %w", err)
	}

	post := models.WPPost{
		Title:   article.Title,
		Content: html,
		Status:  models.WPStatusPublish,
	}
	if scheduled {
		post.Status = models.WPStatusFuture
		post.Date = scheduleAt
	}

	var result *models.WPPostResult
	if article.WordPressPostID != nil {
		if !scheduled {
			// without a date WordPress keeps the post's future date
			post.Date = &now
		}
		result, err = s.wordpress.UpdatePost(ctx, *creds, *article.WordPressPostID, post)
	} else {
		result, err = s.wordpress.CreatePost(ctx, *creds, post)
	}
	if err != nil {
		s.logger.Error("wordpress publish failed",
			"article_id", article.ID,
			"site_id", site.ID,
			"error", err,
		)
		return err
	}

	article.WordPressPostID = &result.ID
	if result.Link != "" {
		link := result.Link
		article.PublishedURL = &link
	}
	return nil
}

// credentials prefers the site's own credentials, then the owner's settings.
func (s *PublishingService) credentials(ctx context.Context, ownerID string, site *models.Site) (*models.WordPressCredentials, error) {
	if creds := site.WordPressCredentials(); creds != nil {
		return creds, nil
	}

	settings, err := s.settingsRepo.GetByUserID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if settings == nil || settings.WordPress == nil || settings.WordPress.Username == "" || settings.WordPress.AppPassword == "" {
		return nil, domain.FieldError("wordpress", "no WordPress credentials configured for this site")
	}

	creds := *settings.WordPress
	if site.URL != "" {
		creds.URL = site.URL
	}
	return &creds, nil
}
