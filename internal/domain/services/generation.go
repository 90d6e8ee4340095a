package services

import (
	"context"
	"time"

	"contentpilot/internal/domain/models"
)

// ProgressFunc receives stage events while a generation run progresses.
type ProgressFunc func(eventType string, data map[string]any)

// GenerationService owns the "generation" article status.
type GenerationService interface {
	// StartGeneration moves the article to "generation" and runs the pipeline in the background
	StartGeneration(ctx context.Context, ownerID, articleID string) (*models.Article, error)

	// Run executes the pipeline synchronously: semantic analysis, content, humanize
	Run(ctx context.Context, ownerID, articleID string, progress ProgressFunc) (*models.Article, error)

	// CancelGeneration stops a running pipeline
	CancelGeneration(ctx context.Context, ownerID, articleID string) error

	// RecoverStale returns articles left in "generation" by a previous process to draft
	RecoverStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
