package repositories

import (
	"context"

	"contentpilot/internal/domain/models"
)

// PersonaRepository defines data access operations for personas
type PersonaRepository interface {
	Create(ctx context.Context, persona *models.Persona) error
	GetByID(ctx context.Context, id, userID string) (*models.Persona, error)
	// List returns the owner's personas ordered by last name, first name
	List(ctx context.Context, userID string) ([]models.Persona, error)
	Update(ctx context.Context, persona *models.Persona) error
	Delete(ctx context.Context, id, userID string) error
}
