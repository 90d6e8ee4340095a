package services

import (
	"context"
	"time"

	"contentpilot/internal/domain/models"
)

// ArticlePublisher pushes an article to its project's site.
type ArticlePublisher interface {
	// PublishArticle publishes now, or schedules when scheduleAt is in the future
	PublishArticle(ctx context.Context, ownerID, articleID string, scheduleAt *time.Time) (*models.Article, error)
}

// WordPressClient talks to the WordPress REST API.
type WordPressClient interface {
	CreatePost(ctx context.Context, creds models.WordPressCredentials, post models.WPPost) (*models.WPPostResult, error)
	UpdatePost(ctx context.Context, creds models.WordPressCredentials, postID int64, post models.WPPost) (*models.WPPostResult, error)
	CurrentUser(ctx context.Context, creds models.WordPressCredentials) (*models.WPUser, error)
	ListCategories(ctx context.Context, creds models.WordPressCredentials) ([]models.WPCategory, error)
}

// EventPublisher emits article lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}
