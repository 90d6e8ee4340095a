package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/httputil"
)

// PersonaHandler handles persona HTTP requests
type PersonaHandler struct {
	personaService services.PersonaService
	logger         *slog.Logger
}

// NewPersonaHandler creates a new persona handler
func NewPersonaHandler(personaService services.PersonaService, logger *slog.Logger) *PersonaHandler {
	return &PersonaHandler{
		personaService: personaService,
		logger:         logger,
	}
}

// legacyKeys mark a French-keyed persona body.
var legacyKeys = []string{"prenom", "nom", "niveau_expertise"}

// updatePersonaBody is the PATCH body; absent fields keep their stored value.
type updatePersonaBody struct {
	FirstName          *string                  `json:"first_name"`
	LastName           *string                  `json:"last_name"`
	Age                *int                     `json:"age"`
	Profession         *string                  `json:"profession"`
	ExpertiseLevel     *models.ExpertiseLevel   `json:"expertise_level"`
	Goals              []string                 `json:"goals"`
	Challenges         []string                 `json:"challenges"`
	Interests          []string                 `json:"interests"`
	LanguageRegister   *models.LanguageRegister `json:"language_register"`
	Tone               *models.Tone             `json:"tone"`
	InformationSources []string                 `json:"information_sources"`
	Language           *string                  `json:"language"`
	SiteID             httputil.OptionalString  `json:"site_id"`
}

// readPersonaBody reads the body once and reports whether it uses the legacy keys.
func readPersonaBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool, bool) {
	var body json.RawMessage
	if !parseBody(w, r, &body) {
		return nil, false, false
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false, false
	}
	for _, key := range legacyKeys {
		if _, ok := keys[key]; ok {
			return body, true, true
		}
	}
	return body, false, true
}

// unmarshalPersonaBody decodes body into dest or writes a 400.
func unmarshalPersonaBody(w http.ResponseWriter, body json.RawMessage, dest interface{}) bool {
	if err := json.Unmarshal(body, dest); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// decodePersonaRequest accepts both the current body and the legacy French-keyed one.
func decodePersonaRequest(w http.ResponseWriter, r *http.Request) (*services.PersonaRequest, bool) {
	body, legacy, ok := readPersonaBody(w, r)
	if !ok {
		return nil, false
	}

	if legacy {
		var l models.LegacyPersona
		if !unmarshalPersonaBody(w, body, &l) {
			return nil, false
		}
		return services.PersonaRequestFromLegacy(l), true
	}

	var req services.PersonaRequest
	if !unmarshalPersonaBody(w, body, &req) {
		return nil, false
	}
	return &req, true
}

// decodePersonaUpdate is decodePersonaRequest for PATCH bodies.
func decodePersonaUpdate(w http.ResponseWriter, r *http.Request) (*services.UpdatePersonaRequest, bool) {
	body, legacy, ok := readPersonaBody(w, r)
	if !ok {
		return nil, false
	}

	if legacy {
		var l models.LegacyPersona
		if !unmarshalPersonaBody(w, body, &l) {
			return nil, false
		}
		return services.PersonaUpdateFromLegacy(l), true
	}

	var b updatePersonaBody
	if !unmarshalPersonaBody(w, body, &b) {
		return nil, false
	}
	return &services.UpdatePersonaRequest{
		FirstName:          b.FirstName,
		LastName:           b.LastName,
		Age:                b.Age,
		Profession:         b.Profession,
		ExpertiseLevel:     b.ExpertiseLevel,
		Goals:              b.Goals,
		Challenges:         b.Challenges,
		Interests:          b.Interests,
		LanguageRegister:   b.LanguageRegister,
		Tone:               b.Tone,
		InformationSources: b.InformationSources,
		Language:           b.Language,
		SiteID: services.OptionalID{
			Present: b.SiteID.Present,
			Value:   b.SiteID.Value,
		},
	}, true
}

// ListPersonas retrieves the user's personas
// GET /api/personas?site_id=&q=
func (h *PersonaHandler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	filter := services.PersonaFilter{
		SiteID: httputil.QueryParam(r, "site_id"),
		Query:  httputil.QueryParam(r, "q"),
	}

	personas, err := h.personaService.ListPersonas(r.Context(), httputil.GetUserID(r), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, personas)
}

// CreatePersona creates a new persona
// POST /api/personas
func (h *PersonaHandler) CreatePersona(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePersonaRequest(w, r)
	if !ok {
		return
	}

	persona, err := h.personaService.CreatePersona(r.Context(), httputil.GetUserID(r), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, persona)
}

// GetPersona retrieves a persona by ID
// GET /api/personas/{id}
func (h *PersonaHandler) GetPersona(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Persona ID")
	if !ok {
		return
	}

	persona, err := h.personaService.GetPersona(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, persona)
}

// UpdatePersona changes the fields present in the body
// PATCH /api/personas/{id}
func (h *PersonaHandler) UpdatePersona(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Persona ID")
	if !ok {
		return
	}

	req, ok := decodePersonaUpdate(w, r)
	if !ok {
		return
	}

	persona, err := h.personaService.UpdatePersona(r.Context(), httputil.GetUserID(r), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, persona)
}

// DeletePersona deletes a persona
// DELETE /api/personas/{id}
func (h *PersonaHandler) DeletePersona(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Persona ID")
	if !ok {
		return
	}

	if err := h.personaService.DeletePersona(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

type generatePersonaRequest struct {
	Description string `json:"description"`
}

// GeneratePersona drafts a persona from a description without saving it
// POST /api/personas/generate
func (h *PersonaHandler) GeneratePersona(w http.ResponseWriter, r *http.Request) {
	var req generatePersonaRequest
	if !parseBody(w, r, &req) {
		return
	}

	persona, err := h.personaService.GeneratePersona(r.Context(), httputil.GetUserID(r), req.Description)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, persona)
}
