package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"contentpilot/internal/config"
	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/service/markup"
	"contentpilot/internal/service/prompt"
)

// articleService implements the ArticleService interface
type articleService struct {
	articleRepo repositories.ArticleRepository
	projectRepo repositories.ProjectRepository
	personaRepo repositories.PersonaRepository
	txManager   repositories.TransactionManager
	contexts    ContextLoader
	events      services.EventPublisher
	logger      *slog.Logger
}

// NewArticleService creates a new article service
func NewArticleService(
	articleRepo repositories.ArticleRepository,
	projectRepo repositories.ProjectRepository,
	siteRepo repositories.SiteRepository,
	personaRepo repositories.PersonaRepository,
	txManager repositories.TransactionManager,
	events services.EventPublisher,
	logger *slog.Logger,
) services.ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		projectRepo: projectRepo,
		personaRepo: personaRepo,
		txManager:   txManager,
		contexts:    ContextLoader{Projects: projectRepo, Sites: siteRepo, Personas: personaRepo},
		events:      events,
		logger:      logger,
	}
}

// articleInput is the validated shape shared by create and update.
type articleInput struct {
	Title                string                      `json:"title"`
	Topic                string                      `json:"topic"`
	ContentType          models.ContentType          `json:"content_type"`
	SemanticAnalysisType models.SemanticAnalysisType `json:"semantic_analysis_type"`
	Status               models.ArticleStatus        `json:"status"`
	PublishDate          *time.Time                  `json:"publish_date"`
}

func (in *articleInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&in.Topic, validation.RuneLength(0, config.MaxTitleLength)),
		validation.Field(&in.ContentType, validation.Required, validation.In(
			models.ContentTypeBlog, models.ContentTypeComparison, models.ContentTypeRecipe, models.ContentTypeProduct,
		)),
		validation.Field(&in.SemanticAnalysisType, validation.Required, validation.In(
			models.SemanticAnalysisNone, models.SemanticAnalysisAI, models.SemanticAnalysisScrape,
		)),
		validation.Field(&in.PublishDate,
			validation.When(in.Status == models.ArticleStatusScheduled, validation.Required.Error("is required when scheduling")),
		),
	)
}

func inputFromArticle(a *models.Article) *articleInput {
	return &articleInput{
		Title:                a.Title,
		Topic:                a.Topic,
		ContentType:          a.ContentType,
		SemanticAnalysisType: a.SemanticAnalysisType,
		Status:               a.Status,
		PublishDate:          a.PublishDate,
	}
}

// CreateArticle inserts the article and increments the project's counter in one transaction
func (s *articleService) CreateArticle(ctx context.Context, ownerID, projectID string, req *services.CreateArticleRequest) (*models.Article, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	ts := now()
	article := &models.Article{
		UserID:               ownerID,
		ProjectID:            projectID,
		Title:                strings.TrimSpace(req.Title),
		Topic:                strings.TrimSpace(req.Topic),
		Content:              req.Content,
		Status:               models.ArticleStatusDraft,
		PublishDate:          req.PublishDate,
		WordCount:            markup.CountWords(req.Content),
		ContentType:          req.ContentType,
		SemanticAnalysisType: req.SemanticAnalysisType,
		Humanize:             req.Humanize,
		CreatedAt:            ts,
		UpdatedAt:            ts,
	}
	if article.Topic == "" {
		article.Topic = article.Title
	}
	if article.ContentType == "" {
		article.ContentType = models.ContentTypeBlog
	}
	if article.SemanticAnalysisType == "" {
		article.SemanticAnalysisType = models.SemanticAnalysisNone
	}

	if err := inputFromArticle(article).Validate(); err != nil {
		return nil, domain.ValidationFailed(err)
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		project, err := s.projectRepo.GetByID(txCtx, projectID, ownerID)
		if err != nil {
			return err
		}

		article.Persona = project.Persona
		if personaID := trimPtr(req.PersonaID); personaID != nil {
			persona, err := s.personaRepo.GetByID(txCtx, *personaID, ownerID)
			if err != nil {
				return referenceError(err, "persona_id", "persona not found")
			}
			article.Persona = persona.Ref()
		}

		if err := s.articleRepo.Create(txCtx, article); err != nil {
			return err
		}
		return s.projectRepo.AdjustArticleCount(txCtx, projectID, ownerID, 1)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("article created",
		"id", article.ID,
		"project_id", projectID,
		"content_type", article.ContentType,
		"user_id", ownerID,
	)
	s.publish(ctx, models.EventArticleCreated, article)

	return article, nil
}

// GetArticle retrieves an article by ID
func (s *articleService) GetArticle(ctx context.Context, ownerID, id string) (*models.Article, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.articleRepo.GetByID(ctx, id, ownerID)
}

// ListArticles returns the owner's articles matching filter, newest first.
func (s *articleService) ListArticles(ctx context.Context, ownerID string, filter services.ArticleFilter) ([]models.Article, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	articles, err := s.articleRepo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FilterArticles(articles, filter), nil
}

// ListProjectArticles returns a project's articles, newest first.
func (s *articleService) ListProjectArticles(ctx context.Context, ownerID, projectID string) ([]models.Article, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	if _, err := s.projectRepo.GetByID(ctx, projectID, ownerID); err != nil {
		return nil, err
	}
	return s.articleRepo.ListByProject(ctx, projectID, ownerID)
}

// UpdateArticle applies a partial update. Articles being generated are locked,
// and status changes follow models.CanUserTransition.
func (s *articleService) UpdateArticle(ctx context.Context, ownerID, id string, req *services.UpdateArticleRequest) (*models.Article, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	article, err := s.articleRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if article.IsGenerating() {
		return nil, &domain.ConflictError{
			Message:      "article is being generated",
			ResourceType: "article",
			ResourceID:   article.ID,
		}
	}

	if req.Status != nil && *req.Status != article.Status {
		if !models.CanUserTransition(article.Status, *req.Status) {
			return nil, domain.FieldError("status",
				fmt.Sprintf("cannot change status from %s to %s", article.Status, *req.Status))
		}
		article.Status = *req.Status
		if article.Status == models.ArticleStatusPublished && req.PublishDate == nil && article.PublishDate == nil {
			ts := now()
			article.PublishDate = &ts
		}
	}

	if req.Title != nil {
		article.Title = strings.TrimSpace(*req.Title)
	}
	if req.Topic != nil {
		article.Topic = strings.TrimSpace(*req.Topic)
	}
	if req.Content != nil {
		article.Content = *req.Content
		article.WordCount = markup.CountWords(article.Content)
	}
	if req.PublishDate != nil {
		article.PublishDate = req.PublishDate
	}
	if req.ContentType != nil {
		article.ContentType = *req.ContentType
	}
	if req.SemanticAnalysisType != nil {
		article.SemanticAnalysisType = *req.SemanticAnalysisType
	}
	if req.Humanize != nil {
		article.Humanize = *req.Humanize
	}
	if req.PersonaID != nil {
		if personaID := trimPtr(req.PersonaID); personaID == nil {
			article.Persona = nil
		} else {
			persona, err := s.personaRepo.GetByID(ctx, *personaID, ownerID)
			if err != nil {
				return nil, referenceError(err, "persona_id", "persona not found")
			}
			article.Persona = persona.Ref()
		}
	}

	if err := inputFromArticle(article).Validate(); err != nil {
		return nil, domain.ValidationFailed(err)
	}
	article.UpdatedAt = now()

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}

	s.logger.Info("article updated",
		"id", article.ID,
		"status", article.Status,
		"user_id", ownerID,
	)

	return article, nil
}

// DeleteArticle removes the article and decrements the project's counter in one transaction.
// Articles being generated must be cancelled first.
func (s *articleService) DeleteArticle(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	var deleted *models.Article
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.articleRepo.GetByID(txCtx, id, ownerID)
		if err != nil {
			return err
		}
		if current.IsGenerating() {
			return &domain.ConflictError{
				Message:      "article is being generated; cancel the generation first",
				ResourceType: "article",
				ResourceID:   id,
			}
		}

		article, err := s.articleRepo.Delete(txCtx, id, ownerID)
		if err != nil {
			return err
		}
		deleted = article
		return s.projectRepo.AdjustArticleCount(txCtx, article.ProjectID, ownerID, -1)
	})
	if err != nil {
		return err
	}

	s.logger.Info("article deleted",
		"id", id,
		"project_id", deleted.ProjectID,
		"user_id", ownerID,
	)
	s.publish(ctx, models.EventArticleDeleted, deleted)

	return nil
}

// BuildPrompt returns the full generation prompt for the article without calling the LLM
func (s *articleService) BuildPrompt(ctx context.Context, ownerID, id string) (string, error) {
	if err := requireOwner(ownerID); err != nil {
		return "", err
	}

	article, err := s.articleRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	actx, err := s.contexts.Load(ctx, ownerID, article)
	if err != nil {
		return "", err
	}

	text, err := prompt.GeneratePrompt(actx.PromptData())
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return text, nil
}

// publish emits a lifecycle event; failures are logged, never returned.
func (s *articleService) publish(ctx context.Context, eventType string, article *models.Article) {
	event := models.Event{
		Type:       eventType,
		UserID:     article.UserID,
		ArticleID:  article.ID,
		ProjectID:  article.ProjectID,
		Status:     string(article.Status),
		OccurredAt: now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			"type", eventType,
			"article_id", article.ID,
			"error", err,
		)
	}
}
