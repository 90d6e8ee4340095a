package content

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/repository/memory"
)

const owner = "user-1"

type fakeWordPress struct {
	userErr    error
	categories []models.WPCategory
	calls      int
}

func (f *fakeWordPress) CreatePost(ctx context.Context, creds models.WordPressCredentials, post models.WPPost) (*models.WPPostResult, error) {
	return &models.WPPostResult{ID: 1, Link: creds.URL + "/?p=1", Status: post.Status}, nil
}

func (f *fakeWordPress) UpdatePost(ctx context.Context, creds models.WordPressCredentials, postID int64, post models.WPPost) (*models.WPPostResult, error) {
	return &models.WPPostResult{ID: postID, Link: creds.URL + "/?p=1", Status: post.Status}, nil
}

func (f *fakeWordPress) CurrentUser(ctx context.Context, creds models.WordPressCredentials) (*models.WPUser, error) {
	f.calls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &models.WPUser{ID: 1, Name: creds.Username}, nil
}

func (f *fakeWordPress) ListCategories(ctx context.Context, creds models.WordPressCredentials) ([]models.WPCategory, error) {
	return f.categories, nil
}

type fakeGenerator struct {
	text     string
	err      error
	requests []*services.GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req *services.GenerateRequest) (*services.GenerateResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &services.GenerateResponse{Text: f.text, Model: req.Model}, nil
}

func (f *fakeGenerator) Name() string { return "fake" }

type fakeResolver struct {
	gen    services.TextGenerator
	models []string
}

func (f *fakeResolver) Resolve(ctx context.Context, ownerID, model string) (services.TextGenerator, string, error) {
	f.models = append(f.models, model)
	return f.gen, model, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingEvents) Publish(ctx context.Context, event models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	store     *memory.Store
	sites     services.SiteService
	personas  services.PersonaService
	projects  services.ProjectService
	articles  services.ArticleService
	wordpress *fakeWordPress
	generator *fakeGenerator
	resolver  *fakeResolver
	events    *recordingEvents
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store := memory.NewStore()
	env := &testEnv{
		store:     store,
		wordpress: &fakeWordPress{},
		generator: &fakeGenerator{},
		events:    &recordingEvents{},
	}
	env.resolver = &fakeResolver{gen: env.generator}

	env.sites = NewSiteService(store.Sites(), store.Projects(), store.TxManager(), env.wordpress, logger)
	env.personas = NewPersonaService(store.Personas(), store.Sites(), store.Projects(), store.Articles(),
		store.TxManager(), env.resolver, "openai/gpt-4", logger)
	env.projects = NewProjectService(store.Projects(), store.Sites(), store.Personas(), logger)
	env.articles = NewArticleService(store.Articles(), store.Projects(), store.Sites(), store.Personas(),
		store.TxManager(), env.events, logger)
	return env
}

func (e *testEnv) createSite(t *testing.T, name string) *models.Site {
	t.Helper()
	site, err := e.sites.CreateSite(context.Background(), owner, &services.CreateSiteRequest{
		Name: name,
		URL:  "https://example.com",
		Type: models.SiteTypeCustom,
	})
	require.NoError(t, err)
	return site
}

func (e *testEnv) createPersona(t *testing.T, first, last string) *models.Persona {
	t.Helper()
	persona, err := e.personas.CreatePersona(context.Background(), owner, &services.PersonaRequest{
		FirstName:  first,
		LastName:   last,
		Age:        35,
		Profession: "Chef",
	})
	require.NoError(t, err)
	return persona
}

func (e *testEnv) createProject(t *testing.T, siteID string, personaID *string) *models.Project {
	t.Helper()
	project, err := e.projects.CreateProject(context.Background(), owner, &services.CreateProjectRequest{
		Name:      "Launch",
		SiteID:    siteID,
		PersonaID: personaID,
	})
	require.NoError(t, err)
	return project
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var fieldErrs *domain.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs.Fields, field)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func strPtr(s string) *string { return &s }
