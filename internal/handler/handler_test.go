package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"field errors", domain.FieldError("name", "cannot be blank"), http.StatusBadRequest},
		{"validation", fmt.Errorf("%w: bad", domain.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("site x: %w", domain.ErrNotFound), http.StatusNotFound},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"conflict", &domain.ConflictError{Message: "busy", ResourceType: "article", ResourceID: "a1"}, http.StatusConflict},
		{"upstream", fmt.Errorf("%w: timeout", domain.ErrUpstream), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}

	t.Run("field map is exposed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handleError(rec, domain.FieldError("name", "cannot be blank"))
		body := decode[map[string]any](t, rec)
		assert.Equal(t, map[string]any{"name": "cannot be blank"}, body["errors"])
	})

	t.Run("internal details stay hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handleError(rec, errors.New("pq: password=secret"))
		assert.NotContains(t, rec.Body.String(), "secret")
	})
}

func TestPathParam_Missing(t *testing.T) {
	f := newFixture(t)
	rec := call(f.sites.GetSite, http.MethodGet, "/api/sites/", "", "", owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSiteHandler(t *testing.T) {
	f := newFixture(t)

	rec := call(f.sites.CreateSite, http.MethodPost, "/api/sites",
		`{"name":"Cuisine","url":"https://cuisine.example","type":"wordpress","wp_username":"chef","wp_app_password":"abcd efgh"}`, "", owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	id := created["id"].(string)
	assert.Equal(t, true, created["has_wp_credentials"])
	assert.NotContains(t, rec.Body.String(), "abcd efgh")

	rec = call(f.sites.CreateSite, http.MethodPost, "/api/sites", `{"name":"","type":"custom"}`, "", owner)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec)["errors"], "name")

	rec = call(f.sites.ListSites, http.MethodGet, "/api/sites?q=CUIS", "", "", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = call(f.sites.ListSites, http.MethodGet, "/api/sites?type=custom", "", "", owner)
	assert.Empty(t, decode[[]map[string]any](t, rec))

	rec = call(f.sites.GetSite, http.MethodGet, "/api/sites/"+id, "", id, "intruder")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(f.sites.UpdateSite, http.MethodPatch, "/api/sites/"+id, `{"auto_publish":true}`, id, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["auto_publish"])

	rec = call(f.sites.SyncSite, http.MethodPost, "/api/sites/"+id+"/sync", "", id, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(models.SiteStatusConnected), decode[map[string]any](t, rec)["status"])

	rec = call(f.sites.DeleteSite, http.MethodDelete, "/api/sites/"+id, "", id, owner)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSiteHandler_DeleteReferencedSite(t *testing.T) {
	f := newFixture(t)
	site, _ := f.seedProject(t)

	rec := call(f.sites.DeleteSite, http.MethodDelete, "/api/sites/"+site.ID, "", site.ID, owner)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "site", body["resource_type"])
	assert.Equal(t, site.ID, body["resource_id"])
}

func TestPersonaHandler_LegacyBody(t *testing.T) {
	f := newFixture(t)

	rec := call(f.personas.CreatePersona, http.MethodPost, "/api/personas", `{
		"prenom": "Marie",
		"nom": "Curie",
		"age": "42 ans",
		"profession": "Physicienne",
		"niveau_expertise": "intermédiaire",
		"objectifs": ["comprendre"],
		"tonalite_preferee": "sérieux",
		"langue": "fr"
	}`, "", owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	persona := decode[models.Persona](t, rec)
	assert.Equal(t, "Marie", persona.FirstName)
	assert.Equal(t, "Curie", persona.LastName)
	assert.Equal(t, 42, persona.Age)
	assert.Equal(t, models.ExpertiseIntermediate, persona.ExpertiseLevel)
	assert.Equal(t, models.ToneSerious, persona.Tone)
	assert.Equal(t, []string{"comprendre"}, persona.Goals)
}

func TestPersonaHandler_CurrentBody(t *testing.T) {
	f := newFixture(t)

	rec := call(f.personas.CreatePersona, http.MethodPost, "/api/personas",
		`{"first_name":"Paul","last_name":"Bocuse","expertise_level":"expert"}`, "", owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[models.Persona](t, rec).ID

	rec = call(f.personas.UpdatePersona, http.MethodPatch, "/api/personas/"+id,
		`{"first_name":"Paul","last_name":"","expertise_level":"expert"}`, id, owner)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec)["errors"], "last_name")

	rec = call(f.personas.ListPersonas, http.MethodGet, "/api/personas?q=bocuse", "", "", owner)
	assert.Len(t, decode[[]models.Persona](t, rec), 1)

	rec = call(f.personas.DeletePersona, http.MethodDelete, "/api/personas/"+id, "", id, owner)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPersonaHandler_PartialUpdate(t *testing.T) {
	f := newFixture(t)
	site, _ := f.seedProject(t)

	rec := call(f.personas.CreatePersona, http.MethodPost, "/api/personas",
		`{"first_name":"Paul","last_name":"Bocuse","goals":["cook"],"site_id":"`+site.ID+`"}`, "", owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[models.Persona](t, rec).ID

	rec = call(f.personas.UpdatePersona, http.MethodPatch, "/api/personas/"+id,
		`{"tone":"serious"}`, id, owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	persona := decode[models.Persona](t, rec)
	assert.Equal(t, models.ToneSerious, persona.Tone)
	assert.Equal(t, "Paul", persona.FirstName)
	assert.Equal(t, "Bocuse", persona.LastName)
	assert.Equal(t, []string{"cook"}, persona.Goals)
	require.NotNil(t, persona.SiteID)
	assert.Equal(t, site.ID, *persona.SiteID)

	rec = call(f.personas.UpdatePersona, http.MethodPatch, "/api/personas/"+id,
		`{"site_id":null}`, id, owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	persona = decode[models.Persona](t, rec)
	assert.Nil(t, persona.SiteID)
	assert.Equal(t, "Bocuse", persona.LastName)

	rec = call(f.personas.UpdatePersona, http.MethodPatch, "/api/personas/"+id,
		`[1, 2]`, id, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectHandler_UpdatePersona(t *testing.T) {
	f := newFixture(t)
	_, project := f.seedProject(t)

	rec := call(f.personas.CreatePersona, http.MethodPost, "/api/personas",
		`{"first_name":"Paul","last_name":"Bocuse"}`, "", owner)
	require.Equal(t, http.StatusCreated, rec.Code)
	personaID := decode[models.Persona](t, rec).ID

	rec = call(f.projects.UpdateProject, http.MethodPatch, "/api/projects/"+project.ID,
		`{"persona_id":"`+personaID+`"}`, project.ID, owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Project](t, rec)
	require.NotNil(t, updated.Persona)
	assert.Equal(t, "Paul Bocuse", updated.Persona.Name)

	// absent keeps it
	rec = call(f.projects.UpdateProject, http.MethodPatch, "/api/projects/"+project.ID,
		`{"name":"Été"}`, project.ID, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decode[models.Project](t, rec)
	assert.Equal(t, "Été", updated.Name)
	assert.NotNil(t, updated.Persona)

	rec = call(f.projects.UpdateProject, http.MethodPatch, "/api/projects/"+project.ID,
		`{"persona_id":null}`, project.ID, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[models.Project](t, rec).Persona)

	rec = call(f.projects.UpdateProject, http.MethodPatch, "/api/projects/"+project.ID,
		`{"name":`, project.ID, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArticleHandler(t *testing.T) {
	f := newFixture(t)
	_, project := f.seedProject(t)

	rec := call(f.articles.CreateArticle, http.MethodPost, "/api/projects/"+project.ID+"/articles",
		`{"title":"Asperges","content":"un deux trois"}`, project.ID, owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	article := decode[models.Article](t, rec)
	assert.Equal(t, 3, article.WordCount)
	assert.Equal(t, models.ArticleStatusDraft, article.Status)

	rec = call(f.articles.CreateArticle, http.MethodPost, "/api/projects/"+project.ID+"/articles",
		`{"title":""}`, project.ID, owner)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec)["errors"], "title")

	rec = call(f.projects.GetProject, http.MethodGet, "/api/projects/"+project.ID, "", project.ID, owner)
	assert.Equal(t, 1, decode[models.Project](t, rec).ArticleCount)

	rec = call(f.articles.ListProjectArticles, http.MethodGet, "/api/projects/"+project.ID+"/articles", "", project.ID, owner)
	assert.Len(t, decode[[]models.Article](t, rec), 1)

	rec = call(f.articles.ListArticles, http.MethodGet, "/api/articles?status=published", "", "", owner)
	assert.Empty(t, decode[[]models.Article](t, rec))

	rec = call(f.articles.UpdateArticle, http.MethodPatch, "/api/articles/"+article.ID,
		`{"status":"scheduled"}`, article.ID, owner)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec)["errors"], "publish_date")

	rec = call(f.articles.GetPrompt, http.MethodGet, "/api/articles/"+article.ID+"/prompt", "", article.ID, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	prompt := decode[map[string]string](t, rec)
	assert.Equal(t, article.ID, prompt["article_id"])
	assert.Contains(t, prompt["prompt"], "Asperges")

	rec = call(f.articles.DeleteArticle, http.MethodDelete, "/api/articles/"+article.ID, "", article.ID, owner)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(f.articles.GetArticle, http.MethodGet, "/api/articles/"+article.ID, "", article.ID, owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerationHandler(t *testing.T) {
	f := newFixture(t)

	rec := call(f.generation.StartGeneration, http.MethodPost, "/api/articles/a1/generate", "", "a1", owner)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"a1"}, f.gen.started)
	assert.Equal(t, models.ArticleStatusGeneration, decode[models.Article](t, rec).Status)

	f.gen.startErr = &domain.ConflictError{Message: "article is already being generated", ResourceType: "article", ResourceID: "a1"}
	rec = call(f.generation.StartGeneration, http.MethodPost, "/api/articles/a1/generate", "", "a1", owner)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(f.generation.CancelGeneration, http.MethodPost, "/api/articles/a1/generation/cancel", "", "a1", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decode[map[string]any](t, rec)["status"])

	f.gen.cancelErr = fmt.Errorf("no live generation: %w", domain.ErrNotFound)
	rec = call(f.generation.CancelGeneration, http.MethodPost, "/api/articles/a1/generation/cancel", "", "a1", owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerationHandler_Publish(t *testing.T) {
	f := newFixture(t)

	rec := call(f.generation.PublishArticle, http.MethodPost, "/api/articles/a1/publish", "", "a1", owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, f.pub.scheduleAt)

	rec = call(f.generation.PublishArticle, http.MethodPost, "/api/articles/a1/publish",
		`{"schedule_at":"2030-05-01T08:00:00Z"}`, "a1", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.pub.scheduleAt)
	assert.True(t, f.pub.scheduleAt.Equal(time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.ArticleStatusScheduled, decode[models.Article](t, rec).Status)

	rec = call(f.generation.PublishArticle, http.MethodPost, "/api/articles/a1/publish", `{"schedule_at":`, "a1", owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, f.pub.calls)
}

func TestUserSettingsHandler(t *testing.T) {
	f := newFixture(t)

	rec := call(f.settings.GetSettings, http.MethodGet, "/api/users/me/settings", "", "", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fr", decode[models.UserSettings](t, rec).Language)

	rec = call(f.settings.UpdateSettings, http.MethodPatch, "/api/users/me/settings", `{
		"theme": "dark",
		"ai_api_key": "sk-abcdef123456",
		"wordpress": {"url": "https://blog.example", "username": "chef", "app_password": "abcd efgh ijkl"}
	}`, "", owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[models.UserSettings](t, rec)
	assert.Equal(t, "dark", got.Theme)
	require.NotNil(t, got.AIAPIKey)
	assert.Equal(t, "****3456", *got.AIAPIKey)
	require.NotNil(t, got.WordPress)
	assert.Equal(t, "****ijkl", got.WordPress.AppPassword)

	rec = call(f.settings.UpdateSettings, http.MethodPatch, "/api/users/me/settings",
		`{"wordpress": null, "ai_api_key": null}`, "", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[models.UserSettings](t, rec)
	assert.Nil(t, got.WordPress)
	assert.Nil(t, got.AIAPIKey)
	assert.Equal(t, "dark", got.Theme)

	rec = call(f.settings.UpdateSettings, http.MethodPatch, "/api/users/me/settings",
		`{"billing": {"payment_method": "sepa", "iban": "nope"}}`, "", owner)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]any](t, rec)["errors"], "billing.iban")

	rec = call(f.settings.GetSettings, http.MethodGet, "/api/users/me/settings", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
