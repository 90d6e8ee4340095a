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

const articleColumns = `id, user_id, project_id, title, topic, content, status, publish_date,
	persona_id, persona_name, word_count, content_type, semantic_analysis_type, humanize,
	semantic_analysis, generation_stage, generation_error, wordpress_post_id, published_url,
	created_at, updated_at`

// PostgresArticleRepository implements repositories.ArticleRepository
type PostgresArticleRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(config *RepositoryConfig) repositories.ArticleRepository {
	return &PostgresArticleRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

func scanArticle(row pgx.Row) (*models.Article, error) {
	var (
		a           models.Article
		personaID   *string
		personaName *string
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.ProjectID, &a.Title, &a.Topic, &a.Content, &a.Status, &a.PublishDate,
		&personaID, &personaName, &a.WordCount, &a.ContentType, &a.SemanticAnalysisType,
		&a.Humanize, &a.SemanticAnalysis, &a.GenerationStage, &a.GenerationError,
		&a.WordPressPostID, &a.PublishedURL, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Persona = personaRef(personaID, personaName)
	return &a, nil
}

func (r *PostgresArticleRepository) queryArticles(ctx context.Context, query string, args ...interface{}) ([]models.Article, error) {
	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

// Create stores a new article
func (r *PostgresArticleRepository) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (user_id, project_id, title, topic, content, status, publish_date,
			persona_id, persona_name, word_count, content_type, semantic_analysis_type, humanize,
			semantic_analysis, generation_stage, generation_error, wordpress_post_id,
			published_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id
	`
	personaID, personaName := personaColumnsOf(article.Persona)
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		article.UserID, article.ProjectID, article.Title, article.Topic, article.Content,
		article.Status, article.PublishDate, personaID, personaName, article.WordCount,
		article.ContentType, article.SemanticAnalysisType, article.Humanize,
		article.SemanticAnalysis, article.GenerationStage, article.GenerationError,
		article.WordPressPostID, article.PublishedURL, article.CreatedAt, article.UpdatedAt,
	).Scan(&article.ID)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("article references: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create article: %w", err)
	}

	r.logger.Debug("article created", "id", article.ID, "project_id", article.ProjectID)
	return nil
}

// GetByID retrieves an article owned by userID
func (r *PostgresArticleRepository) GetByID(ctx context.Context, id, userID string) (*models.Article, error) {
	if err := checkID("article", id); err != nil {
		return nil, err
	}
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 AND user_id = $2`

	article, err := scanArticle(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// List returns all of the owner's articles, newest first
func (r *PostgresArticleRepository) List(ctx context.Context, userID string) ([]models.Article, error) {
	return r.queryArticles(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
}

// ListByProject returns a project's articles, newest first
func (r *PostgresArticleRepository) ListByProject(ctx context.Context, projectID, userID string) ([]models.Article, error) {
	if err := checkID("project", projectID); err != nil {
		return nil, err
	}
	return r.queryArticles(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE project_id = $1 AND user_id = $2 ORDER BY created_at DESC`,
		projectID, userID)
}

// Update writes every mutable column; project_id and created_at never change
func (r *PostgresArticleRepository) Update(ctx context.Context, article *models.Article) error {
	if err := checkID("article", article.ID); err != nil {
		return err
	}
	query := `
		UPDATE articles
		SET title = $3, topic = $4, content = $5, status = $6, publish_date = $7,
			persona_id = $8, persona_name = $9, word_count = $10, content_type = $11,
			semantic_analysis_type = $12, humanize = $13, semantic_analysis = $14,
			generation_stage = $15, generation_error = $16, wordpress_post_id = $17,
			published_url = $18, updated_at = $19
		WHERE id = $1 AND user_id = $2
	`
	personaID, personaName := personaColumnsOf(article.Persona)
	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		article.ID, article.UserID, article.Title, article.Topic, article.Content, article.Status,
		article.PublishDate, personaID, personaName, article.WordCount, article.ContentType,
		article.SemanticAnalysisType, article.Humanize, article.SemanticAnalysis,
		article.GenerationStage, article.GenerationError, article.WordPressPostID,
		article.PublishedURL, article.UpdatedAt,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("article references: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update article: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("article %s: %w", article.ID, domain.ErrNotFound)
	}
	return nil
}

// SaveGenerationCheckpoint writes only the generated columns, so references
// changed by other requests during a run are never overwritten
func (r *PostgresArticleRepository) SaveGenerationCheckpoint(ctx context.Context, id, userID string, checkpoint models.GenerationCheckpoint) error {
	if err := checkID("article", id); err != nil {
		return err
	}
	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`UPDATE articles
		 SET generation_stage = $3, semantic_analysis = $4, content = $5, word_count = $6, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND status = 'generation'`,
		id, userID, checkpoint.Stage, checkpoint.SemanticAnalysis, checkpoint.Content, checkpoint.WordCount)
	if err != nil {
		return fmt.Errorf("save generation checkpoint: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("generating article %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// EndGeneration returns a generating article to draft
func (r *PostgresArticleRepository) EndGeneration(ctx context.Context, id, userID string, generationError *string) error {
	if err := checkID("article", id); err != nil {
		return err
	}
	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`UPDATE articles
		 SET status = 'draft', generation_stage = NULL, generation_error = $3, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND status = 'generation'`,
		id, userID, generationError)
	if err != nil {
		return fmt.Errorf("end generation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("generating article %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the article and returns the deleted row
func (r *PostgresArticleRepository) Delete(ctx context.Context, id, userID string) (*models.Article, error) {
	if err := checkID("article", id); err != nil {
		return nil, err
	}
	query := `DELETE FROM articles WHERE id = $1 AND user_id = $2 RETURNING ` + articleColumns

	article, err := scanArticle(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("delete article: %w", err)
	}
	return article, nil
}

// RefreshPersonaName rewrites the persona snapshot on the owner's articles
func (r *PostgresArticleRepository) RefreshPersonaName(ctx context.Context, userID, personaID, name string) (int64, error) {
	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`UPDATE articles SET persona_name = $3
		 WHERE user_id = $1 AND persona_id = $2 AND persona_name IS DISTINCT FROM $3`,
		userID, personaID, name)
	if err != nil {
		return 0, fmt.Errorf("refresh article persona name: %w", err)
	}
	return result.RowsAffected(), nil
}

// ResetStaleGenerations returns articles stuck in "generation" to draft.
// It runs across all owners; only the start-up recovery calls it.
func (r *PostgresArticleRepository) ResetStaleGenerations(ctx context.Context, olderThan time.Time, message string) (int64, error) {
	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`UPDATE articles
		 SET status = 'draft', generation_stage = NULL, generation_error = $2, updated_at = NOW()
		 WHERE status = 'generation' AND updated_at < $1`,
		olderThan, message)
	if err != nil {
		return 0, fmt.Errorf("reset stale generations: %w", err)
	}
	return result.RowsAffected(), nil
}
