package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
)

const siteColumns = `id, user_id, name, url, sitemap_url, type, site_type, target_audience,
	wp_username, wp_app_password, status, last_sync, articles_count, categories,
	auto_publish, created_at, updated_at`

// PostgresSiteRepository implements repositories.SiteRepository
type PostgresSiteRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewSiteRepository creates a new site repository
func NewSiteRepository(config *RepositoryConfig) repositories.SiteRepository {
	return &PostgresSiteRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

func scanSite(row pgx.Row) (*models.Site, error) {
	var s models.Site
	err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &s.URL, &s.SitemapURL, &s.Type, &s.Category,
		&s.TargetAudience, &s.WPUsername, &s.WPAppPassword, &s.Status, &s.LastSync,
		&s.ArticlesCount, &s.Categories, &s.AutoPublish, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create stores a new site
func (r *PostgresSiteRepository) Create(ctx context.Context, site *models.Site) error {
	query := `
		INSERT INTO sites (user_id, name, url, sitemap_url, type, site_type, target_audience,
			wp_username, wp_app_password, status, last_sync, articles_count, categories,
			auto_publish, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		site.UserID, site.Name, site.URL, site.SitemapURL, site.Type, site.Category,
		nonNilStrings(site.TargetAudience), site.WPUsername, site.WPAppPassword, site.Status,
		site.LastSync, site.ArticlesCount, nonNilStrings(site.Categories), site.AutoPublish,
		site.CreatedAt, site.UpdatedAt,
	).Scan(&site.ID)
	if err != nil {
		return fmt.Errorf("create site: %w", err)
	}

	r.logger.Debug("site created", "id", site.ID, "user_id", site.UserID)
	return nil
}

// GetByID retrieves a site owned by userID
func (r *PostgresSiteRepository) GetByID(ctx context.Context, id, userID string) (*models.Site, error) {
	if err := checkID("site", id); err != nil {
		return nil, err
	}
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1 AND user_id = $2`

	site, err := scanSite(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("site %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get site: %w", err)
	}
	return site, nil
}

// List returns the owner's sites ordered by name
func (r *PostgresSiteRepository) List(ctx context.Context, userID string) ([]models.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE user_id = $1 ORDER BY name, created_at`

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	sites := []models.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, *site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return sites, nil
}

// Update writes every mutable column of the site
func (r *PostgresSiteRepository) Update(ctx context.Context, site *models.Site) error {
	if err := checkID("site", site.ID); err != nil {
		return err
	}
	query := `
		UPDATE sites
		SET name = $3, url = $4, sitemap_url = $5, type = $6, site_type = $7,
			target_audience = $8, wp_username = $9, wp_app_password = $10, status = $11,
			last_sync = $12, categories = $13, auto_publish = $14, updated_at = $15
		WHERE id = $1 AND user_id = $2
	`
	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		site.ID, site.UserID, site.Name, site.URL, site.SitemapURL, site.Type, site.Category,
		nonNilStrings(site.TargetAudience), site.WPUsername, site.WPAppPassword, site.Status,
		site.LastSync, nonNilStrings(site.Categories), site.AutoPublish, site.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update site: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("site %s: %w", site.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a site. Projects still referencing it block the delete.
func (r *PostgresSiteRepository) Delete(ctx context.Context, id, userID string) error {
	if err := checkID("site", id); err != nil {
		return err
	}
	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`DELETE FROM sites WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      "site is used by one or more projects",
				ResourceType: "site",
				ResourceID:   id,
			}
		}
		return fmt.Errorf("delete site: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("site %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateSyncState records the outcome of a connection check
func (r *PostgresSiteRepository) UpdateSyncState(ctx context.Context, id, userID string, status models.SiteStatus, categories []string, at time.Time) error {
	if err := checkID("site", id); err != nil {
		return err
	}
	query := `
		UPDATE sites
		SET status = $3, categories = COALESCE($4, categories), last_sync = $5, updated_at = $5
		WHERE id = $1 AND user_id = $2
	`
	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID, status, categories, at)
	if err != nil {
		return fmt.Errorf("update site sync state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("site %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// RecordPublish counts a published article and stamps last_sync
func (r *PostgresSiteRepository) RecordPublish(ctx context.Context, id, userID string, at time.Time) error {
	if err := checkID("site", id); err != nil {
		return err
	}
	query := `
		UPDATE sites
		SET articles_count = articles_count + 1, last_sync = $3, updated_at = $3
		WHERE id = $1 AND user_id = $2
	`
	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID, at)
	if err != nil {
		return fmt.Errorf("record site publish: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("site %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
