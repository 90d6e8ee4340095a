package repositories

import (
	"context"
	"time"

	"contentpilot/internal/domain/models"
)

// SiteRepository defines data access operations for sites.
// Every method is scoped to the owner passed in (or carried by the model).
type SiteRepository interface {
	// Create stores a new site and fills ID and timestamps
	Create(ctx context.Context, site *models.Site) error

	GetByID(ctx context.Context, id, userID string) (*models.Site, error)

	// List returns the owner's sites ordered by name
	List(ctx context.Context, userID string) ([]models.Site, error)

	Update(ctx context.Context, site *models.Site) error

	Delete(ctx context.Context, id, userID string) error

	// UpdateSyncState records the result of a connection check
	UpdateSyncState(ctx context.Context, id, userID string, status models.SiteStatus, categories []string, at time.Time) error

	// RecordPublish increments articles_count and stamps last_sync
	RecordPublish(ctx context.Context, id, userID string, at time.Time) error
}
