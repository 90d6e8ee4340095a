package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
)

// PostgresUserSettingsRepository implements repositories.UserSettingsRepository.
// WordPress credentials and billing are stored as JSONB.
type PostgresUserSettingsRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewUserSettingsRepository creates a new PostgresUserSettingsRepository
func NewUserSettingsRepository(config *RepositoryConfig) repositories.UserSettingsRepository {
	return &PostgresUserSettingsRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

// GetByUserID retrieves settings for a specific user
func (r *PostgresUserSettingsRepository) GetByUserID(ctx context.Context, userID string) (*models.UserSettings, error) {
	query := `
		SELECT user_id, language, theme, ai_api_key, wordpress, billing, created_at, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var s models.UserSettings
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.Language,
		&s.Theme,
		&s.AIAPIKey,
		&s.WordPress,
		&s.Billing,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			// No settings yet - not an error
			return nil, nil
		}
		return nil, fmt.Errorf("get user settings: %w", err)
	}

	return &s, nil
}

// Upsert creates or replaces user settings
func (r *PostgresUserSettingsRepository) Upsert(ctx context.Context, settings *models.UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, language, theme, ai_api_key, wordpress, billing, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			language = EXCLUDED.language,
			theme = EXCLUDED.theme,
			ai_api_key = EXCLUDED.ai_api_key,
			wordpress = EXCLUDED.wordpress,
			billing = EXCLUDED.billing,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		settings.UserID,
		settings.Language,
		settings.Theme,
		settings.AIAPIKey,
		settings.WordPress,
		settings.Billing,
		settings.CreatedAt,
		settings.UpdatedAt,
	).Scan(&settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert user settings: %w", err)
	}

	r.logger.Debug("user settings upserted", "user_id", settings.UserID)
	return nil
}
