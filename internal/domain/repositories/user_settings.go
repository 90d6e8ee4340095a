package repositories

import (
	"context"

	"contentpilot/internal/domain/models"
)

// UserSettingsRepository defines the interface for user settings data access
type UserSettingsRepository interface {
	// GetByUserID returns nil, nil when the user has no settings yet
	GetByUserID(ctx context.Context, userID string) (*models.UserSettings, error)

	// Upsert creates or replaces the user's settings
	Upsert(ctx context.Context, settings *models.UserSettings) error
}
