package repositories

import (
	"context"

	"contentpilot/internal/domain/models"
)

// ProjectRepository defines data access operations for projects
type ProjectRepository interface {
	// Create stores a project with article_count = 0
	Create(ctx context.Context, project *models.Project) error

	GetByID(ctx context.Context, id, userID string) (*models.Project, error)

	// List retrieves all projects for a user, ordered by updated_at DESC
	List(ctx context.Context, userID string) ([]models.Project, error)

	// Update writes name, status and the site/persona snapshots
	Update(ctx context.Context, project *models.Project) error

	// Delete removes the project and, by cascade, its articles
	Delete(ctx context.Context, id, userID string) error

	// AdjustArticleCount atomically adds delta to article_count.
	// Returns ErrConflict if the counter would go negative.
	AdjustArticleCount(ctx context.Context, id, userID string, delta int) error

	// RefreshSiteName rewrites the site snapshot on every project referencing siteID
	RefreshSiteName(ctx context.Context, userID, siteID, name string) (int64, error)

	// RefreshPersonaName rewrites the persona snapshot on every project referencing personaID
	RefreshPersonaName(ctx context.Context, userID, personaID, name string) (int64, error)

	// ClearPersona drops the persona reference from projects that use personaID
	ClearPersona(ctx context.Context, userID, personaID string) (int64, error)

	// CountBySite returns how many projects reference siteID
	CountBySite(ctx context.Context, userID, siteID string) (int, error)
}
