package services

import (
	"context"
	"strings"

	"contentpilot/internal/domain/models"
)

// PersonaRequest is used to create a persona
type PersonaRequest struct {
	FirstName          string                  `json:"first_name"`
	LastName           string                  `json:"last_name"`
	Age                int                     `json:"age"`
	Profession         string                  `json:"profession"`
	ExpertiseLevel     models.ExpertiseLevel   `json:"expertise_level"`
	Goals              []string                `json:"goals"`
	Challenges         []string                `json:"challenges"`
	Interests          []string                `json:"interests"`
	LanguageRegister   models.LanguageRegister `json:"language_register"`
	Tone               models.Tone             `json:"tone"`
	InformationSources []string                `json:"information_sources"`
	Language           string                  `json:"language"`
	SiteID             *string                 `json:"site_id"`
}

// UpdatePersonaRequest is a partial update: nil fields and nil lists are left
// unchanged, an empty list clears one. SiteID null detaches the site.
type UpdatePersonaRequest struct {
	FirstName          *string
	LastName           *string
	Age                *int
	Profession         *string
	ExpertiseLevel     *models.ExpertiseLevel
	Goals              []string
	Challenges         []string
	Interests          []string
	LanguageRegister   *models.LanguageRegister
	Tone               *models.Tone
	InformationSources []string
	Language           *string
	SiteID             OptionalID
}

// PersonaFilter narrows an owner's persona list.
type PersonaFilter struct {
	SiteID string
	Query  string
}

// PersonaService defines business logic operations for personas
type PersonaService interface {
	CreatePersona(ctx context.Context, ownerID string, req *PersonaRequest) (*models.Persona, error)
	GetPersona(ctx context.Context, ownerID, id string) (*models.Persona, error)
	ListPersonas(ctx context.Context, ownerID string, filter PersonaFilter) ([]models.Persona, error)
	// UpdatePersona refreshes the persona name snapshot on projects and articles
	UpdatePersona(ctx context.Context, ownerID, id string, req *UpdatePersonaRequest) (*models.Persona, error)
	// DeletePersona clears the persona reference on the owner's projects
	DeletePersona(ctx context.Context, ownerID, id string) error
	// GeneratePersona asks the LLM for a persona matching description; the result is not saved
	GeneratePersona(ctx context.Context, ownerID, description string) (*models.Persona, error)
}

// PersonaRequestFromLegacy maps a French-keyed document onto a request.
// Enum values are converted; names are kept as sent so validation still applies.
func PersonaRequestFromLegacy(l models.LegacyPersona) *PersonaRequest {
	p := models.PersonaFromLegacy(l)
	return &PersonaRequest{
		FirstName:          strings.TrimSpace(l.Prenom),
		LastName:           strings.TrimSpace(l.Nom),
		Age:                p.Age,
		Profession:         strings.TrimSpace(l.Profession),
		ExpertiseLevel:     p.ExpertiseLevel,
		Goals:              p.Goals,
		Challenges:         p.Challenges,
		Interests:          p.Interests,
		LanguageRegister:   p.LanguageRegister,
		Tone:               p.Tone,
		InformationSources: p.InformationSources,
		Language:           p.Language,
		SiteID:             l.SiteID,
	}
}

// PersonaUpdateFromLegacy sets every field a legacy document defines.
// Legacy documents are complete, so only an absent siteId is left alone.
func PersonaUpdateFromLegacy(l models.LegacyPersona) *UpdatePersonaRequest {
	full := PersonaRequestFromLegacy(l)
	return &UpdatePersonaRequest{
		FirstName:          &full.FirstName,
		LastName:           &full.LastName,
		Age:                &full.Age,
		Profession:         &full.Profession,
		ExpertiseLevel:     &full.ExpertiseLevel,
		Goals:              nonNil(full.Goals),
		Challenges:         nonNil(full.Challenges),
		Interests:          nonNil(full.Interests),
		LanguageRegister:   &full.LanguageRegister,
		Tone:               &full.Tone,
		InformationSources: nonNil(full.InformationSources),
		Language:           &full.Language,
		SiteID:             OptionalID{Present: l.SiteID != nil, Value: l.SiteID},
	}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
