package services

import (
	"context"

	"contentpilot/internal/domain/models"
)

// UpdateSettingsRequest is a partial update. Secrets use tri-state semantics
// so a client can clear them with null.
type UpdateSettingsRequest struct {
	Language  *string
	Theme     *string
	AIAPIKey  OptionalString
	WordPress *models.WordPressCredentials
	ClearWP   bool
	Billing   *models.Billing
}

// OptionalString is the transport-agnostic tri-state value (absent / null / set).
type OptionalString struct {
	Present bool
	Value   *string
}

// UserSettingsService defines the business logic for user settings
type UserSettingsService interface {
	// GetSettings returns defaults when none exist yet
	GetSettings(ctx context.Context, ownerID string) (*models.UserSettings, error)

	// UpdateSettings applies a partial update, creating the record if needed
	UpdateSettings(ctx context.Context, ownerID string, req *UpdateSettingsRequest) (*models.UserSettings, error)
}
