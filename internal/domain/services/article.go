package services

import (
	"context"
	"time"

	"contentpilot/internal/domain/models"
)

// CreateArticleRequest represents a request to add an article to a project
type CreateArticleRequest struct {
	Title                string                      `json:"title"`
	Topic                string                      `json:"topic"`
	Content              string                      `json:"content"`
	ContentType          models.ContentType          `json:"content_type"`
	SemanticAnalysisType models.SemanticAnalysisType `json:"semantic_analysis_type"`
	Humanize             bool                        `json:"humanize"`
	PersonaID            *string                     `json:"persona_id"`
	PublishDate          *time.Time                  `json:"publish_date"`
}

// UpdateArticleRequest is a partial update; nil fields are left unchanged.
type UpdateArticleRequest struct {
	Title                *string                      `json:"title"`
	Topic                *string                      `json:"topic"`
	Content              *string                      `json:"content"`
	Status               *models.ArticleStatus        `json:"status"`
	PublishDate          *time.Time                   `json:"publish_date"`
	ContentType          *models.ContentType          `json:"content_type"`
	SemanticAnalysisType *models.SemanticAnalysisType `json:"semantic_analysis_type"`
	Humanize             *bool                        `json:"humanize"`
	PersonaID            *string                      `json:"persona_id"`
}

// ArticleFilter narrows an owner's article list.
type ArticleFilter struct {
	Status      models.ArticleStatus
	ProjectID   string
	ContentType models.ContentType
	Query       string
}

// ArticleService defines business logic operations for articles
type ArticleService interface {
	// CreateArticle inserts the article and increments the project's counter in one transaction
	CreateArticle(ctx context.Context, ownerID, projectID string, req *CreateArticleRequest) (*models.Article, error)
	GetArticle(ctx context.Context, ownerID, id string) (*models.Article, error)
	ListArticles(ctx context.Context, ownerID string, filter ArticleFilter) ([]models.Article, error)
	ListProjectArticles(ctx context.Context, ownerID, projectID string) ([]models.Article, error)
	UpdateArticle(ctx context.Context, ownerID, id string, req *UpdateArticleRequest) (*models.Article, error)
	// DeleteArticle removes the article and decrements the project's counter in one transaction
	DeleteArticle(ctx context.Context, ownerID, id string) error
	// BuildPrompt returns the full generation prompt for the article without calling the LLM
	BuildPrompt(ctx context.Context, ownerID, id string) (string, error)
}
