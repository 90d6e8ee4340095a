package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/events"
	"contentpilot/internal/httputil"
	"contentpilot/internal/repository/memory"
	"contentpilot/internal/service"
	"contentpilot/internal/service/content"
)

const owner = "user-1"

type nopWordPress struct{}

func (nopWordPress) CreatePost(ctx context.Context, creds models.WordPressCredentials, post models.WPPost) (*models.WPPostResult, error) {
	return &models.WPPostResult{ID: 1, Status: post.Status}, nil
}

func (nopWordPress) UpdatePost(ctx context.Context, creds models.WordPressCredentials, postID int64, post models.WPPost) (*models.WPPostResult, error) {
	return &models.WPPostResult{ID: postID, Status: post.Status}, nil
}

func (nopWordPress) CurrentUser(ctx context.Context, creds models.WordPressCredentials) (*models.WPUser, error) {
	return &models.WPUser{ID: 1}, nil
}

func (nopWordPress) ListCategories(ctx context.Context, creds models.WordPressCredentials) ([]models.WPCategory, error) {
	return nil, nil
}

type stubGeneration struct {
	startErr  error
	cancelErr error
	started   []string
}

func (s *stubGeneration) StartGeneration(ctx context.Context, ownerID, articleID string) (*models.Article, error) {
	if s.startErr != nil {
		return nil, s.startErr
	}
	s.started = append(s.started, articleID)
	return &models.Article{ID: articleID, UserID: ownerID, Status: models.ArticleStatusGeneration}, nil
}

func (s *stubGeneration) Run(ctx context.Context, ownerID, articleID string, progress services.ProgressFunc) (*models.Article, error) {
	return nil, nil
}

func (s *stubGeneration) CancelGeneration(ctx context.Context, ownerID, articleID string) error {
	return s.cancelErr
}

func (s *stubGeneration) RecoverStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

type stubPublisher struct {
	scheduleAt *time.Time
	calls      int
}

func (s *stubPublisher) PublishArticle(ctx context.Context, ownerID, articleID string, scheduleAt *time.Time) (*models.Article, error) {
	s.calls++
	s.scheduleAt = scheduleAt
	status := models.ArticleStatusPublished
	if scheduleAt != nil {
		status = models.ArticleStatusScheduled
	}
	return &models.Article{ID: articleID, Status: status, PublishDate: scheduleAt}, nil
}

type fixture struct {
	store      *memory.Store
	sites      *SiteHandler
	personas   *PersonaHandler
	projects   *ProjectHandler
	articles   *ArticleHandler
	settings   *UserSettingsHandler
	generation *GenerationHandler
	gen        *stubGeneration
	pub        *stubPublisher

	siteSvc    services.SiteService
	projectSvc services.ProjectService
	personaSvc services.PersonaService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	store := memory.NewStore()

	f := &fixture{
		store: store,
		gen:   &stubGeneration{},
		pub:   &stubPublisher{},
	}
	f.siteSvc = content.NewSiteService(store.Sites(), store.Projects(), store.TxManager(), nopWordPress{}, logger)
	f.personaSvc = content.NewPersonaService(store.Personas(), store.Sites(), store.Projects(), store.Articles(),
		store.TxManager(), nil, "lorem-fast", logger)
	f.projectSvc = content.NewProjectService(store.Projects(), store.Sites(), store.Personas(), logger)
	articleSvc := content.NewArticleService(store.Articles(), store.Projects(), store.Sites(), store.Personas(),
		store.TxManager(), events.NewLogPublisher(logger), logger)

	f.sites = NewSiteHandler(f.siteSvc, logger)
	f.personas = NewPersonaHandler(f.personaSvc, logger)
	f.projects = NewProjectHandler(f.projectSvc, logger)
	f.articles = NewArticleHandler(articleSvc, logger)
	f.settings = NewUserSettingsHandler(service.NewUserSettingsService(store.UserSettings(), logger), logger)
	f.generation = NewGenerationHandler(f.gen, f.pub, logger)
	return f
}

func (f *fixture) seedProject(t *testing.T) (*models.Site, *models.Project) {
	t.Helper()
	ctx := context.Background()
	site, err := f.siteSvc.CreateSite(ctx, owner, &services.CreateSiteRequest{
		Name: "Cuisine",
		URL:  "https://cuisine.example",
		Type: models.SiteTypeCustom,
	})
	require.NoError(t, err)
	project, err := f.projectSvc.CreateProject(ctx, owner, &services.CreateProjectRequest{
		Name:   "Printemps",
		SiteID: site.ID,
	})
	require.NoError(t, err)
	return site, project
}

// call invokes a handler as the given owner; id fills the {id} path value.
func call(h http.HandlerFunc, method, target, body, id, ownerID string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if id != "" {
		req.SetPathValue("id", id)
	}
	if ownerID != "" {
		req = httputil.WithUserID(req, ownerID)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
