package repositories

import (
	"context"
	"time"

	"contentpilot/internal/domain/models"
)

// ArticleRepository defines data access operations for articles
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error

	GetByID(ctx context.Context, id, userID string) (*models.Article, error)

	// List returns all of the owner's articles, newest first
	List(ctx context.Context, userID string) ([]models.Article, error)

	// ListByProject returns a project's articles, newest first
	ListByProject(ctx context.Context, projectID, userID string) ([]models.Article, error)

	Update(ctx context.Context, article *models.Article) error

	// SaveGenerationCheckpoint writes the generated columns of an article that
	// is still in "generation"
	SaveGenerationCheckpoint(ctx context.Context, id, userID string, checkpoint models.GenerationCheckpoint) error

	// EndGeneration moves an article out of "generation" back to draft,
	// recording generationError (nil on success)
	EndGeneration(ctx context.Context, id, userID string, generationError *string) error

	// Delete removes the article and returns the deleted row
	Delete(ctx context.Context, id, userID string) (*models.Article, error)

	// RefreshPersonaName rewrites the persona snapshot on the owner's articles
	RefreshPersonaName(ctx context.Context, userID, personaID, name string) (int64, error)

	// ResetStaleGenerations moves articles stuck in "generation" since before
	// olderThan back to draft with the given error message
	ResetStaleGenerations(ctx context.Context, olderThan time.Time, message string) (int64, error)
}
