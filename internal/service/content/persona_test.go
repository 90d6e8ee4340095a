package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
)

func TestCreatePersona_Defaults(t *testing.T) {
	env := newTestEnv(t)

	persona, err := env.personas.CreatePersona(context.Background(), owner, &services.PersonaRequest{
		FirstName: " Marie ",
		LastName:  "Curie",
		Goals:     []string{"learn", " ", "share"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Marie", persona.FirstName)
	assert.Equal(t, models.ExpertiseNovice, persona.ExpertiseLevel)
	assert.Equal(t, models.RegisterSimple, persona.LanguageRegister)
	assert.Equal(t, models.TonePedagogical, persona.Tone)
	assert.Equal(t, "fr", persona.Language)
	assert.Equal(t, []string{"learn", "share"}, persona.Goals)
	assert.Equal(t, []string{}, persona.Challenges)
}

func TestCreatePersona_Validation(t *testing.T) {
	tests := []struct {
		name      string
		req       *services.PersonaRequest
		wantField string
	}{
		{
			name:      "legacy document with empty prenom",
			req:       services.PersonaRequestFromLegacy(models.LegacyPersona{Prenom: "", Nom: "Doe"}),
			wantField: "first_name",
		},
		{
			name:      "missing last name",
			req:       &services.PersonaRequest{FirstName: "Jane"},
			wantField: "last_name",
		},
		{
			name:      "age out of range",
			req:       &services.PersonaRequest{FirstName: "Jane", LastName: "Doe", Age: 200},
			wantField: "age",
		},
		{
			name:      "unknown tone",
			req:       &services.PersonaRequest{FirstName: "Jane", LastName: "Doe", Tone: "sarcastic"},
			wantField: "tone",
		},
		{
			name:      "unsupported language",
			req:       &services.PersonaRequest{FirstName: "Jane", LastName: "Doe", Language: "pt"},
			wantField: "language",
		},
		{
			name:      "unknown site",
			req:       &services.PersonaRequest{FirstName: "Jane", LastName: "Doe", SiteID: strPtr("3f1a0c52-8f55-4b7e-9df7-1f0f3c0f1a11")},
			wantField: "site_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.personas.CreatePersona(context.Background(), owner, tt.req)
			requireFieldError(t, err, tt.wantField)

			personas, err := env.store.Personas().List(context.Background(), owner)
			require.NoError(t, err)
			assert.Empty(t, personas)
		})
	}
}

func TestPersonaRequestFromLegacy(t *testing.T) {
	req := services.PersonaRequestFromLegacy(models.LegacyPersona{
		Prenom:              "Jean",
		Nom:                 "Dupont",
		NiveauExpertise:     "intermédiaire",
		StyleLangagePrefere: "soutenu",
		TonalitePreferee:    "humoristique",
		Langue:              "en",
	})

	assert.Equal(t, "Jean", req.FirstName)
	assert.Equal(t, models.ExpertiseIntermediate, req.ExpertiseLevel)
	assert.Equal(t, models.RegisterElevated, req.LanguageRegister)
	assert.Equal(t, models.ToneHumorous, req.Tone)
	assert.Equal(t, "en", req.Language)
}

func TestUpdatePersona_RefreshesSnapshots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	site := env.createSite(t, "Site")
	persona := env.createPersona(t, "Ada", "Lovelace")
	project := env.createProject(t, site.ID, &persona.ID)
	article, err := env.articles.CreateArticle(ctx, owner, project.ID, &services.CreateArticleRequest{Title: "Hello"})
	require.NoError(t, err)
	require.NotNil(t, article.Persona)
	assert.Equal(t, "Ada Lovelace", article.Persona.Name)

	lastName := "King"
	_, err = env.personas.UpdatePersona(ctx, owner, persona.ID, &services.UpdatePersonaRequest{LastName: &lastName})
	require.NoError(t, err)

	gotProject, err := env.projects.GetProject(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", gotProject.Persona.Name)

	gotArticle, err := env.articles.GetArticle(ctx, owner, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", gotArticle.Persona.Name)
}

func TestUpdatePersona_Partial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	site := env.createSite(t, "Site")
	persona, err := env.personas.CreatePersona(ctx, owner, &services.PersonaRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Age:       36,
		Goals:     []string{"compute"},
		Tone:      models.ToneHumorous,
		SiteID:    &site.ID,
	})
	require.NoError(t, err)

	tone := models.ToneSerious
	updated, err := env.personas.UpdatePersona(ctx, owner, persona.ID, &services.UpdatePersonaRequest{Tone: &tone})
	require.NoError(t, err)
	assert.Equal(t, models.ToneSerious, updated.Tone)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)
	assert.Equal(t, 36, updated.Age)
	assert.Equal(t, []string{"compute"}, updated.Goals)
	require.NotNil(t, updated.SiteID)
	assert.Equal(t, site.ID, *updated.SiteID)

	updated, err = env.personas.UpdatePersona(ctx, owner, persona.ID, &services.UpdatePersonaRequest{
		Goals:  []string{},
		SiteID: services.OptionalID{Present: true},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Goals)
	assert.Nil(t, updated.SiteID)
	assert.Equal(t, models.ToneSerious, updated.Tone)

	empty := "  "
	_, err = env.personas.UpdatePersona(ctx, owner, persona.ID, &services.UpdatePersonaRequest{FirstName: &empty})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeletePersona_ClearsProjectReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	site := env.createSite(t, "Site")
	persona := env.createPersona(t, "Ada", "Lovelace")
	project := env.createProject(t, site.ID, &persona.ID)

	require.NoError(t, env.personas.DeletePersona(ctx, owner, persona.ID))

	got, err := env.projects.GetProject(ctx, owner, project.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Persona)

	err = env.personas.DeletePersona(ctx, owner, persona.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPersonas_Filter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	site := env.createSite(t, "Site")

	_, err := env.personas.CreatePersona(ctx, owner, &services.PersonaRequest{FirstName: "Ada", LastName: "Lovelace", SiteID: &site.ID})
	require.NoError(t, err)
	env.createPersona(t, "Grace", "Hopper")

	bySite, err := env.personas.ListPersonas(ctx, owner, services.PersonaFilter{SiteID: site.ID})
	require.NoError(t, err)
	require.Len(t, bySite, 1)
	assert.Equal(t, "Ada", bySite[0].FirstName)

	byQuery, err := env.personas.ListPersonas(ctx, owner, services.PersonaFilter{Query: "hop"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "Grace", byQuery[0].FirstName)
}

func TestGeneratePersona(t *testing.T) {
	env := newTestEnv(t)
	env.generator.text = "Voici le persona :\n```json\n" + `{
		"prenom": "Claire",
		"nom": "Martin",
		"age": "42",
		"profession": "Boulangère",
		"niveau_expertise": "expert",
		"objectifs": ["ouvrir une boutique"],
		"defis": [],
		"sujets_interet": ["levain"],
		"style_langage_prefere": "neutre",
		"tonalite_preferee": "inconnue",
		"sources_information_habituelles": ["blogs"],
		"langue": "fr"
	}` + "\n```"

	persona, err := env.personas.GeneratePersona(context.Background(), owner, "une boulangère passionnée")
	require.NoError(t, err)

	assert.Equal(t, "Claire", persona.FirstName)
	assert.Equal(t, 42, persona.Age)
	assert.Equal(t, models.ExpertiseExpert, persona.ExpertiseLevel)
	assert.Equal(t, models.RegisterNeutral, persona.LanguageRegister)
	assert.Equal(t, models.TonePedagogical, persona.Tone, "unknown tone falls back to the default")
	assert.Empty(t, persona.ID, "generated personas are not saved")

	require.Len(t, env.generator.requests, 1)
	req := env.generator.requests[0]
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.7, *req.Temperature, 1e-9)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "une boulangère passionnée")
	assert.Equal(t, []string{"openai/gpt-4"}, env.resolver.models)

	personas, err := env.store.Personas().List(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, personas)
}

func TestGeneratePersona_Errors(t *testing.T) {
	t.Run("empty description", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.personas.GeneratePersona(context.Background(), owner, "   ")
		requireFieldError(t, err, "description")
		assert.Empty(t, env.generator.requests)
	})

	t.Run("not json", func(t *testing.T) {
		env := newTestEnv(t)
		env.generator.text = "Désolé, je ne peux pas."
		_, err := env.personas.GeneratePersona(context.Background(), owner, "chef")
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})

	t.Run("provider failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.generator.err = errors.New("boom")
		_, err := env.personas.GeneratePersona(context.Background(), owner, "chef")
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})
}

func TestParseGeneratedPersona_Canonical(t *testing.T) {
	persona, err := ParseGeneratedPersona(`{"first_name":"Sam","last_name":"Lee","age":28,"expertise_level":"intermediate","tone":"serious","language":"en"}`)
	require.NoError(t, err)

	assert.Equal(t, "Sam", persona.FirstName)
	assert.Equal(t, 28, persona.Age)
	assert.Equal(t, models.ExpertiseIntermediate, persona.ExpertiseLevel)
	assert.Equal(t, models.ToneSerious, persona.Tone)
	assert.Equal(t, models.RegisterSimple, persona.LanguageRegister)
	assert.Equal(t, "en", persona.Language)
}

func TestParseGeneratedPersona_Fallbacks(t *testing.T) {
	persona, err := ParseGeneratedPersona(`{}`)
	require.NoError(t, err)

	assert.Equal(t, "John", persona.FirstName)
	assert.Equal(t, "Doe", persona.LastName)
	assert.Equal(t, 30, persona.Age)
	assert.Equal(t, "Non spécifié", persona.Profession)
	assert.Equal(t, "fr", persona.Language)
}
