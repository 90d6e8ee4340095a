package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
)

const projectColumns = `id, user_id, name, site_id, site_name, persona_id, persona_name,
	status, article_count, created_at, updated_at`

// PostgresProjectRepository implements repositories.ProjectRepository
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) repositories.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var (
		p           models.Project
		personaID   *string
		personaName *string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Site.ID, &p.Site.Name, &personaID, &personaName,
		&p.Status, &p.ArticleCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Persona = personaRef(personaID, personaName)
	return &p, nil
}

func personaRef(id, name *string) *models.PersonaRef {
	if id == nil {
		return nil
	}
	ref := &models.PersonaRef{ID: *id}
	if name != nil {
		ref.Name = *name
	}
	return ref
}

// personaColumnsOf splits a snapshot into nullable column values.
func personaColumnsOf(ref *models.PersonaRef) (id, name *string) {
	if ref == nil {
		return nil, nil
	}
	return &ref.ID, &ref.Name
}

// Create stores a new project with article_count = 0
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (user_id, name, site_id, site_name, persona_id, persona_name,
			status, article_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)
		RETURNING id
	`
	personaID, personaName := personaColumnsOf(project.Persona)
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		project.UserID, project.Name, project.Site.ID, project.Site.Name, personaID, personaName,
		project.Status, project.CreatedAt, project.UpdatedAt,
	).Scan(&project.ID)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("project references: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create project: %w", err)
	}
	project.ArticleCount = 0

	r.logger.Debug("project created", "id", project.ID, "user_id", project.UserID)
	return nil
}

// GetByID retrieves a project owned by userID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	if err := checkID("project", id); err != nil {
		return nil, err
	}
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND user_id = $2`

	project, err := scanProject(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// List retrieves all projects for a user, most recently updated first
func (r *PostgresProjectRepository) List(ctx context.Context, userID string) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// Update writes name, status and both snapshots. article_count is never written here.
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	if err := checkID("project", project.ID); err != nil {
		return err
	}
	query := `
		UPDATE projects
		SET name = $3, site_id = $4, site_name = $5, persona_id = $6, persona_name = $7,
			status = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2
	`
	personaID, personaName := personaColumnsOf(project.Persona)
	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		project.ID, project.UserID, project.Name, project.Site.ID, project.Site.Name,
		personaID, personaName, project.Status, project.UpdatedAt,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("project references: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the project; its articles go with it (ON DELETE CASCADE)
func (r *PostgresProjectRepository) Delete(ctx context.Context, id, userID string) error {
	if err := checkID("project", id); err != nil {
		return err
	}
	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AdjustArticleCount adds delta to article_count in a single statement.
// The WHERE guard keeps the counter from going negative.
func (r *PostgresProjectRepository) AdjustArticleCount(ctx context.Context, id, userID string, delta int) error {
	if err := checkID("project", id); err != nil {
		return err
	}
	query := `
		UPDATE projects
		SET article_count = article_count + $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND article_count + $3 >= 0
		RETURNING article_count
	`
	var count int
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID, delta).Scan(&count)
	if err != nil {
		if !IsPgNoRowsError(err) {
			return fmt.Errorf("adjust article count: %w", err)
		}
		// Distinguish a missing project from a guard rejection.
		if _, getErr := r.GetByID(ctx, id, userID); getErr != nil {
			return getErr
		}
		return &domain.ConflictError{
			Message:      "article count cannot go below zero",
			ResourceType: "project",
			ResourceID:   id,
		}
	}

	r.logger.Debug("project article count adjusted", "id", id, "delta", delta, "count", count)
	return nil
}

// RefreshSiteName rewrites the site snapshot on every project referencing siteID
func (r *PostgresProjectRepository) RefreshSiteName(ctx context.Context, userID, siteID, name string) (int64, error) {
	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`UPDATE projects SET site_name = $3 WHERE user_id = $1 AND site_id = $2 AND site_name <> $3`,
		userID, siteID, name)
	if err != nil {
		return 0, fmt.Errorf("refresh project site name: %w", err)
	}
	return result.RowsAffected(), nil
}

// RefreshPersonaName rewrites the persona snapshot on every project referencing personaID
func (r *PostgresProjectRepository) RefreshPersonaName(ctx context.Context, userID, personaID, name string) (int64, error) {
	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`UPDATE projects SET persona_name = $3
		 WHERE user_id = $1 AND persona_id = $2 AND persona_name IS DISTINCT FROM $3`,
		userID, personaID, name)
	if err != nil {
		return 0, fmt.Errorf("refresh project persona name: %w", err)
	}
	return result.RowsAffected(), nil
}

// ClearPersona drops the persona reference from projects that use personaID
func (r *PostgresProjectRepository) ClearPersona(ctx context.Context, userID, personaID string) (int64, error) {
	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`UPDATE projects SET persona_id = NULL, persona_name = NULL, updated_at = NOW()
		 WHERE user_id = $1 AND persona_id = $2`,
		userID, personaID)
	if err != nil {
		return 0, fmt.Errorf("clear project persona: %w", err)
	}
	return result.RowsAffected(), nil
}

// CountBySite returns how many of the owner's projects reference siteID
func (r *PostgresProjectRepository) CountBySite(ctx context.Context, userID, siteID string) (int, error) {
	var count int
	err := GetExecutor(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE user_id = $1 AND site_id = $2`,
		userID, siteID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count projects by site: %w", err)
	}
	return count, nil
}
