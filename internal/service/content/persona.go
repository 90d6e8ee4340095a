package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"contentpilot/internal/config"
	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/service/prompt"
)

const personaTemperature = 0.7

// personaService implements the PersonaService interface
type personaService struct {
	personaRepo  repositories.PersonaRepository
	siteRepo     repositories.SiteRepository
	projectRepo  repositories.ProjectRepository
	articleRepo  repositories.ArticleRepository
	txManager    repositories.TransactionManager
	generators   services.GeneratorResolver
	personaModel string
	logger       *slog.Logger
}

// NewPersonaService creates a new persona service. personaModel is the model
// string used by GeneratePersona (e.g. "openai/gpt-4").
func NewPersonaService(
	personaRepo repositories.PersonaRepository,
	siteRepo repositories.SiteRepository,
	projectRepo repositories.ProjectRepository,
	articleRepo repositories.ArticleRepository,
	txManager repositories.TransactionManager,
	generators services.GeneratorResolver,
	personaModel string,
	logger *slog.Logger,
) services.PersonaService {
	return &personaService{
		personaRepo:  personaRepo,
		siteRepo:     siteRepo,
		projectRepo:  projectRepo,
		articleRepo:  articleRepo,
		txManager:    txManager,
		generators:   generators,
		personaModel: personaModel,
		logger:       logger,
	}
}

// normalizePersonaRequest trims text and fills enum defaults in place.
func normalizePersonaRequest(req *services.PersonaRequest) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Profession = strings.TrimSpace(req.Profession)
	req.Goals = cleanList(req.Goals)
	req.Challenges = cleanList(req.Challenges)
	req.Interests = cleanList(req.Interests)
	req.InformationSources = cleanList(req.InformationSources)
	req.SiteID = trimPtr(req.SiteID)
	if req.ExpertiseLevel == "" {
		req.ExpertiseLevel = models.ExpertiseNovice
	}
	if req.LanguageRegister == "" {
		req.LanguageRegister = models.RegisterSimple
	}
	if req.Tone == "" {
		req.Tone = models.TonePedagogical
	}
	if req.Language == "" {
		req.Language = models.DefaultLanguage
	}
}

func validatePersonaRequest(req *services.PersonaRequest) error {
	languages := make([]interface{}, len(models.PersonaLanguages))
	for i, l := range models.PersonaLanguages {
		languages[i] = l
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.FirstName, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.LastName, validation.Required, validation.Length(1, config.MaxNameLength)),
		validation.Field(&req.Age, validation.Min(0), validation.Max(config.MaxPersonaAge)),
		validation.Field(&req.Profession, validation.Length(0, config.MaxNameLength)),
		validation.Field(&req.ExpertiseLevel, validation.In(models.ExpertiseNovice, models.ExpertiseIntermediate, models.ExpertiseExpert)),
		validation.Field(&req.Goals, listRules()...),
		validation.Field(&req.Challenges, listRules()...),
		validation.Field(&req.Interests, listRules()...),
		validation.Field(&req.LanguageRegister, validation.In(models.RegisterSimple, models.RegisterNeutral, models.RegisterElevated)),
		validation.Field(&req.Tone, validation.In(models.TonePedagogical, models.ToneHumorous, models.ToneSerious)),
		validation.Field(&req.InformationSources, listRules()...),
		validation.Field(&req.Language, validation.In(languages...)),
	)
}

// prepare normalizes, validates and checks the site reference.
func (s *personaService) prepare(ctx context.Context, ownerID string, req *services.PersonaRequest) error {
	normalizePersonaRequest(req)
	if err := validatePersonaRequest(req); err != nil {
		return domain.ValidationFailed(err)
	}
	if req.SiteID != nil {
		if _, err := s.siteRepo.GetByID(ctx, *req.SiteID, ownerID); err != nil {
			return referenceError(err, "site_id", "site not found")
		}
	}
	return nil
}

func applyPersonaRequest(p *models.Persona, req *services.PersonaRequest) {
	p.FirstName = req.FirstName
	p.LastName = req.LastName
	p.Age = req.Age
	p.Profession = req.Profession
	p.ExpertiseLevel = req.ExpertiseLevel
	p.Goals = req.Goals
	p.Challenges = req.Challenges
	p.Interests = req.Interests
	p.LanguageRegister = req.LanguageRegister
	p.Tone = req.Tone
	p.InformationSources = req.InformationSources
	p.Language = req.Language
	p.SiteID = req.SiteID
}

// CreatePersona validates and stores a persona.
func (s *personaService) CreatePersona(ctx context.Context, ownerID string, req *services.PersonaRequest) (*models.Persona, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, ownerID, req); err != nil {
		return nil, err
	}

	ts := now()
	persona := &models.Persona{UserID: ownerID, CreatedAt: ts, UpdatedAt: ts}
	applyPersonaRequest(persona, req)

	if err := s.personaRepo.Create(ctx, persona); err != nil {
		return nil, err
	}

	s.logger.Info("persona created",
		"id", persona.ID,
		"name", persona.DisplayName(),
		"user_id", ownerID,
	)

	return persona, nil
}

// GetPersona retrieves a persona by ID
func (s *personaService) GetPersona(ctx context.Context, ownerID, id string) (*models.Persona, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return s.personaRepo.GetByID(ctx, id, ownerID)
}

// ListPersonas returns the owner's personas matching filter.
func (s *personaService) ListPersonas(ctx context.Context, ownerID string, filter services.PersonaFilter) ([]models.Persona, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	personas, err := s.personaRepo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return FilterPersonas(personas, filter), nil
}

// mergePersonaUpdate lays the fields present in update over the stored persona.
func mergePersonaUpdate(p *models.Persona, update *services.UpdatePersonaRequest) *services.PersonaRequest {
	req := &services.PersonaRequest{
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		Age:                p.Age,
		Profession:         p.Profession,
		ExpertiseLevel:     p.ExpertiseLevel,
		Goals:              p.Goals,
		Challenges:         p.Challenges,
		Interests:          p.Interests,
		LanguageRegister:   p.LanguageRegister,
		Tone:               p.Tone,
		InformationSources: p.InformationSources,
		Language:           p.Language,
		SiteID:             p.SiteID,
	}
	if update.FirstName != nil {
		req.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		req.LastName = *update.LastName
	}
	if update.Age != nil {
		req.Age = *update.Age
	}
	if update.Profession != nil {
		req.Profession = *update.Profession
	}
	if update.ExpertiseLevel != nil {
		req.ExpertiseLevel = *update.ExpertiseLevel
	}
	if update.Goals != nil {
		req.Goals = update.Goals
	}
	if update.Challenges != nil {
		req.Challenges = update.Challenges
	}
	if update.Interests != nil {
		req.Interests = update.Interests
	}
	if update.LanguageRegister != nil {
		req.LanguageRegister = *update.LanguageRegister
	}
	if update.Tone != nil {
		req.Tone = *update.Tone
	}
	if update.InformationSources != nil {
		req.InformationSources = update.InformationSources
	}
	if update.Language != nil {
		req.Language = *update.Language
	}
	if update.SiteID.Present {
		req.SiteID = update.SiteID.Value
	}
	return req
}

// UpdatePersona applies a partial update and refreshes name snapshots.
func (s *personaService) UpdatePersona(ctx context.Context, ownerID, id string, update *services.UpdatePersonaRequest) (*models.Persona, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	persona, err := s.personaRepo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	req := mergePersonaUpdate(persona, update)
	if err := s.prepare(ctx, ownerID, req); err != nil {
		return nil, err
	}

	oldName := persona.DisplayName()
	applyPersonaRequest(persona, req)
	persona.UpdatedAt = now()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.personaRepo.Update(txCtx, persona); err != nil {
			return err
		}
		name := persona.DisplayName()
		if name == oldName {
			return nil
		}
		if _, err := s.projectRepo.RefreshPersonaName(txCtx, ownerID, persona.ID, name); err != nil {
			return fmt.Errorf("refresh project persona name: %w", err)
		}
		if _, err := s.articleRepo.RefreshPersonaName(txCtx, ownerID, persona.ID, name); err != nil {
			return fmt.Errorf("refresh article persona name: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("persona updated",
		"id", persona.ID,
		"name", persona.DisplayName(),
		"user_id", ownerID,
	)

	return persona, nil
}

// DeletePersona removes the persona and detaches it from projects and articles.
func (s *personaService) DeletePersona(ctx context.Context, ownerID, id string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	if _, err := s.personaRepo.GetByID(ctx, id, ownerID); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := s.projectRepo.ClearPersona(txCtx, ownerID, id); err != nil {
			return fmt.Errorf("clear project persona: %w", err)
		}
		return s.personaRepo.Delete(txCtx, id, ownerID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("persona deleted",
		"id", id,
		"user_id", ownerID,
	)

	return nil
}

// GeneratePersona asks the LLM for a persona matching description.
// The reply may use French legacy keys or the canonical English ones.
func (s *personaService) GeneratePersona(ctx context.Context, ownerID, description string) (*models.Persona, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	description = strings.TrimSpace(description)
	err := validation.Validate(description,
		validation.Required,
		validation.RuneLength(1, config.MaxPersonaDescriptionLength),
	)
	if err != nil {
		return nil, domain.FieldError("description", err.Error())
	}

	generator, model, err := s.generators.Resolve(ctx, ownerID, s.personaModel)
	if err != nil {
		return nil, err
	}

	temperature := personaTemperature
	resp, err := generator.Generate(ctx, &services.GenerateRequest{
		Model:       model,
		Messages:    []services.Message{{Role: "user", Content: prompt.PersonaGenerationPrompt(description)}},
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: persona generation: %v", domain.ErrUpstream, err)
	}

	persona, err := ParseGeneratedPersona(resp.Text)
	if err != nil {
		s.logger.Warn("persona generation returned invalid JSON",
			"user_id", ownerID,
			"provider", generator.Name(),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	persona.UserID = ownerID

	s.logger.Info("persona generated",
		"name", persona.DisplayName(),
		"provider", generator.Name(),
		"model", model,
		"user_id", ownerID,
	)

	return persona, nil
}

// ParseGeneratedPersona extracts the JSON object from an LLM reply and converts it.
// Missing or invalid values fall back to the legacy defaults.
func ParseGeneratedPersona(text string) (*models.Persona, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in persona reply")
	}
	raw := []byte(text[start : end+1])

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("invalid persona JSON: %w", err)
	}

	var legacy models.LegacyPersona
	if _, canonical := keys["first_name"]; canonical {
		var p struct {
			FirstName          string          `json:"first_name"`
			LastName           string          `json:"last_name"`
			Age                json.RawMessage `json:"age"`
			Profession         string          `json:"profession"`
			ExpertiseLevel     string          `json:"expertise_level"`
			Goals              []string        `json:"goals"`
			Challenges         []string        `json:"challenges"`
			Interests          []string        `json:"interests"`
			LanguageRegister   string          `json:"language_register"`
			Tone               string          `json:"tone"`
			InformationSources []string        `json:"information_sources"`
			Language           string          `json:"language"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("invalid persona JSON: %w", err)
		}
		persona := models.PersonaFromLegacy(models.LegacyPersona{
			Prenom:                        p.FirstName,
			Nom:                           p.LastName,
			Age:                           p.Age,
			Profession:                    p.Profession,
			Objectifs:                     p.Goals,
			Defis:                         p.Challenges,
			SujetsInteret:                 p.Interests,
			SourcesInformationHabituelles: p.InformationSources,
			Langue:                        p.Language,
		})
		if v := models.ExpertiseLevel(p.ExpertiseLevel); v == models.ExpertiseIntermediate || v == models.ExpertiseExpert {
			persona.ExpertiseLevel = v
		}
		if v := models.LanguageRegister(p.LanguageRegister); v == models.RegisterNeutral || v == models.RegisterElevated {
			persona.LanguageRegister = v
		}
		if v := models.Tone(p.Tone); v == models.ToneHumorous || v == models.ToneSerious {
			persona.Tone = v
		}
		return &persona, nil
	}

	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("invalid persona JSON: %w", err)
	}
	persona := models.PersonaFromLegacy(legacy)
	return &persona, nil
}
