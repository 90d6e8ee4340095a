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

const personaColumns = `id, user_id, first_name, last_name, age, profession, expertise_level,
	goals, challenges, interests, language_register, tone, information_sources, language,
	site_id, created_at, updated_at`

// PostgresPersonaRepository implements repositories.PersonaRepository
type PostgresPersonaRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPersonaRepository creates a new persona repository
func NewPersonaRepository(config *RepositoryConfig) repositories.PersonaRepository {
	return &PostgresPersonaRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

func scanPersona(row pgx.Row) (*models.Persona, error) {
	var p models.Persona
	err := row.Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Age, &p.Profession, &p.ExpertiseLevel,
		&p.Goals, &p.Challenges, &p.Interests, &p.LanguageRegister, &p.Tone,
		&p.InformationSources, &p.Language, &p.SiteID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create stores a new persona
func (r *PostgresPersonaRepository) Create(ctx context.Context, persona *models.Persona) error {
	query := `
		INSERT INTO personas (user_id, first_name, last_name, age, profession, expertise_level,
			goals, challenges, interests, language_register, tone, information_sources,
			language, site_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		persona.UserID, persona.FirstName, persona.LastName, persona.Age, persona.Profession,
		persona.ExpertiseLevel, nonNilStrings(persona.Goals), nonNilStrings(persona.Challenges),
		nonNilStrings(persona.Interests), persona.LanguageRegister, persona.Tone,
		nonNilStrings(persona.InformationSources), persona.Language, persona.SiteID,
		persona.CreatedAt, persona.UpdatedAt,
	).Scan(&persona.ID)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("persona site: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create persona: %w", err)
	}

	r.logger.Debug("persona created", "id", persona.ID, "user_id", persona.UserID)
	return nil
}

// GetByID retrieves a persona owned by userID
func (r *PostgresPersonaRepository) GetByID(ctx context.Context, id, userID string) (*models.Persona, error) {
	if err := checkID("persona", id); err != nil {
		return nil, err
	}
	query := `SELECT ` + personaColumns + ` FROM personas WHERE id = $1 AND user_id = $2`

	persona, err := scanPersona(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("persona %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get persona: %w", err)
	}
	return persona, nil
}

// List returns the owner's personas ordered by last name, first name
func (r *PostgresPersonaRepository) List(ctx context.Context, userID string) ([]models.Persona, error) {
	query := `SELECT ` + personaColumns + ` FROM personas WHERE user_id = $1 ORDER BY last_name, first_name`

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	defer rows.Close()

	personas := []models.Persona{}
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, fmt.Errorf("scan persona: %w", err)
		}
		personas = append(personas, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate personas: %w", err)
	}
	return personas, nil
}

// Update writes every mutable column of the persona
func (r *PostgresPersonaRepository) Update(ctx context.Context, persona *models.Persona) error {
	if err := checkID("persona", persona.ID); err != nil {
		return err
	}
	query := `
		UPDATE personas
		SET first_name = $3, last_name = $4, age = $5, profession = $6, expertise_level = $7,
			goals = $8, challenges = $9, interests = $10, language_register = $11, tone = $12,
			information_sources = $13, language = $14, site_id = $15, updated_at = $16
		WHERE id = $1 AND user_id = $2
	`
	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		persona.ID, persona.UserID, persona.FirstName, persona.LastName, persona.Age,
		persona.Profession, persona.ExpertiseLevel, nonNilStrings(persona.Goals),
		nonNilStrings(persona.Challenges), nonNilStrings(persona.Interests),
		persona.LanguageRegister, persona.Tone, nonNilStrings(persona.InformationSources),
		persona.Language, persona.SiteID, persona.UpdatedAt,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("persona site: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update persona: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("persona %s: %w", persona.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a persona; projects and articles referencing it lose the link via ON DELETE SET NULL
func (r *PostgresPersonaRepository) Delete(ctx context.Context, id, userID string) error {
	if err := checkID("persona", id); err != nil {
		return err
	}
	result, err := GetExecutor(ctx, r.pool).Exec(ctx,
		`DELETE FROM personas WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete persona: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("persona %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
