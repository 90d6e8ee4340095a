package generation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	mstream "github.com/haowjy/meridian-stream-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/repository/memory"
	"contentpilot/internal/service/prompt"
)

const owner = "user-1"

// scriptedGenerator answers calls in order; block makes it wait for cancellation
// and gate holds the first call until closed.
type scriptedGenerator struct {
	mu       sync.Mutex
	replies  []string
	failAt   int // 1-based call number that fails, 0 for never
	block    bool
	gate     chan struct{}
	started  chan struct{}
	requests []*services.GenerateRequest
}

func (g *scriptedGenerator) Generate(ctx context.Context, req *services.GenerateRequest) (*services.GenerateResponse, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	n := len(g.requests)
	g.mu.Unlock()

	if g.block {
		close(g.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.gate != nil && n == 1 {
		close(g.started)
		select {
		case <-g.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n == g.failAt {
		return nil, errors.New("provider exploded")
	}
	if n > len(g.replies) {
		return &services.GenerateResponse{Text: "extra", Model: req.Model}, nil
	}
	return &services.GenerateResponse{Text: g.replies[n-1], Model: req.Model}, nil
}

func (g *scriptedGenerator) Name() string { return "scripted" }

func (g *scriptedGenerator) calls() []*services.GenerateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*services.GenerateRequest(nil), g.requests...)
}

type staticResolver struct {
	gen services.TextGenerator
	mu  sync.Mutex
	got []string
}

func (r *staticResolver) Resolve(ctx context.Context, ownerID, model string) (services.TextGenerator, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, model)
	return r.gen, model, nil
}

type fakeOutlines struct {
	pages []prompt.PageOutline
	err   error
}

func (f *fakeOutlines) Outline(ctx context.Context, site *models.Site, topic string) ([]prompt.PageOutline, error) {
	return f.pages, f.err
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []string
	store *memory.Store
}

func (p *fakePublisher) PublishArticle(ctx context.Context, ownerID, articleID string, scheduleAt *time.Time) (*models.Article, error) {
	p.mu.Lock()
	p.calls = append(p.calls, articleID)
	p.mu.Unlock()
	article, err := p.store.Articles().GetByID(ctx, articleID, ownerID)
	if err != nil {
		return nil, err
	}
	article.Status = models.ArticleStatusPublished
	return article, p.store.Articles().Update(ctx, article)
}

type eventLog struct {
	mu     sync.Mutex
	events []models.Event
}

func (e *eventLog) Publish(ctx context.Context, event models.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

type progressLog struct {
	mu    sync.Mutex
	types []string
}

func (p *progressLog) record(eventType string, data map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, eventType)
}

type fixture struct {
	store     *memory.Store
	gen       *scriptedGenerator
	resolver  *staticResolver
	outlines  *fakeOutlines
	publisher *fakePublisher
	events    *eventLog
	svc       *Service
	site      *models.Site
	persona   *models.Persona
	article   *models.Article
}

func newFixture(t *testing.T, site models.Site, article models.Article) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now().UTC()

	site.UserID = owner
	site.Name = "Cuisine facile"
	if site.URL == "" {
		site.URL = "https://cuisine.example"
	}
	site.CreatedAt, site.UpdatedAt = now, now
	require.NoError(t, store.Sites().Create(ctx, &site))

	persona := &models.Persona{UserID: owner, FirstName: "Paul", LastName: "Bocuse", Profession: "Chef", Age: 60,
		LanguageRegister: models.RegisterSimple, Tone: models.ToneHumorous, Language: "fr", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Personas().Create(ctx, persona))

	project := &models.Project{UserID: owner, Name: "Recettes", Site: models.SiteRef{ID: site.ID, Name: site.Name},
		Persona: persona.Ref(), Status: models.ProjectStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Projects().Create(ctx, project))

	article.UserID = owner
	article.ProjectID = project.ID
	article.Persona = persona.Ref()
	if article.Title == "" {
		article.Title = "Tarte aux pommes"
	}
	article.Topic = article.Title
	if article.Status == "" {
		article.Status = models.ArticleStatusDraft
	}
	if article.ContentType == "" {
		article.ContentType = models.ContentTypeRecipe
	}
	if article.SemanticAnalysisType == "" {
		article.SemanticAnalysisType = models.SemanticAnalysisNone
	}
	article.CreatedAt, article.UpdatedAt = now, now
	require.NoError(t, store.Articles().Create(ctx, &article))

	f := &fixture{
		store:    store,
		gen:      &scriptedGenerator{started: make(chan struct{})},
		outlines: &fakeOutlines{},
		events:   &eventLog{},
		site:     &site,
		persona:  persona,
		article:  &article,
	}
	f.resolver = &staticResolver{gen: f.gen}
	f.publisher = &fakePublisher{store: store}
	f.svc = NewService(store.Articles(), store.Projects(), store.Sites(), store.Personas(),
		f.resolver, f.publisher, f.outlines, f.events, mstream.NewRegistry(),
		Config{DefaultModel: "openai/gpt-4o", HumanizeModel: "openai/gpt-4o-mini", StageTimeout: time.Second},
		slog.New(slog.DiscardHandler))
	return f
}

func (f *fixture) reload(t *testing.T) *models.Article {
	t.Helper()
	article, err := f.store.Articles().GetByID(context.Background(), f.article.ID, owner)
	require.NoError(t, err)
	return article
}

func TestRun_ContentOnly(t *testing.T) {
	f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{})
	f.gen.replies = []string{"# Tarte aux pommes\n\nUne recette simple et rapide"}
	progress := &progressLog{}

	article, err := f.svc.Run(context.Background(), owner, f.article.ID, progress.record)
	require.NoError(t, err)

	assert.Equal(t, models.ArticleStatusDraft, article.Status)
	assert.Equal(t, "# Tarte aux pommes\n\nUne recette simple et rapide", article.Content)
	assert.Equal(t, 8, article.WordCount)
	assert.Nil(t, article.GenerationError)
	assert.Nil(t, article.GenerationStage)

	calls := f.gen.calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Messages, 1)
	assert.Contains(t, calls[0].Messages[0].Content, "Tarte aux pommes")
	assert.Equal(t, []string{"openai/gpt-4o"}, f.resolver.got)

	assert.Equal(t, []string{EventStageStarted, EventStageCompleted, EventGenerationCompleted}, progress.types)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, models.EventArticleGenerated, f.events.events[0].Type)
	assert.Empty(t, f.publisher.calls)

	assert.Equal(t, models.ArticleStatusDraft, f.reload(t).Status)
}

func TestRun_AnalysisContentAndHumanize(t *testing.T) {
	f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{
		SemanticAnalysisType: models.SemanticAnalysisAI,
		Humanize:             true,
	})
	f.gen.replies = []string{
		"Analyse: les lecteurs veulent une recette rapide.",
		"<h1>Tarte</h1><p>Version machine</p>",
		"# Tarte\n\nVersion humaine de la recette",
	}

	article, err := f.svc.Run(context.Background(), owner, f.article.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, "Analyse: les lecteurs veulent une recette rapide.", article.SemanticAnalysis)
	assert.Equal(t, "# Tarte\n\nVersion humaine de la recette", article.Content)

	calls := f.gen.calls()
	require.Len(t, calls, 3)

	content := calls[1].Messages
	require.Len(t, content, 3)
	assert.Equal(t, "assistant", content[1].Role)
	assert.Equal(t, "Analyse: les lecteurs veulent une recette rapide.", content[1].Content)
	assert.True(t, strings.HasPrefix(content[2].Content, prompt.TransitionSentence))

	humanize := calls[2].Messages[0].Content
	assert.Contains(t, humanize, "Version machine", "the humanize pass rewrites the normalized content")
	assert.Contains(t, humanize, "Paul Bocuse")
	assert.Equal(t, []string{"openai/gpt-4o", "openai/gpt-4o-mini"}, f.resolver.got)
}

func TestRun_ScrapeUsesExistingContent(t *testing.T) {
	f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{
		SemanticAnalysisType: models.SemanticAnalysisScrape,
	})
	f.outlines.pages = []prompt.PageOutline{{URL: "https://cuisine.example/tarte", Title: "Tarte fine", Headings: []string{"La pâte brisée"}}}
	f.gen.replies = []string{"analyse", "contenu"}

	_, err := f.svc.Run(context.Background(), owner, f.article.ID, nil)
	require.NoError(t, err)

	semantic := f.gen.calls()[0].Messages[0].Content
	assert.Contains(t, semantic, "La pâte brisée")
}

func TestRun_ScrapeWithoutSitemapStillRuns(t *testing.T) {
	f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{
		SemanticAnalysisType: models.SemanticAnalysisScrape,
	})
	f.outlines.err = errors.New("no sitemap")
	f.gen.replies = []string{"analyse", "contenu"}

	article, err := f.svc.Run(context.Background(), owner, f.article.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "contenu", article.Content)
}

func TestRun_FailureKeepsCheckpoints(t *testing.T) {
	f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{
		SemanticAnalysisType: models.SemanticAnalysisAI,
	})
	f.gen.replies = []string{"analyse"}
	f.gen.failAt = 2
	progress := &progressLog{}

	_, err := f.svc.Run(context.Background(), owner, f.article.ID, progress.record)
	require.Error(t, err)

	article := f.reload(t)
	assert.Equal(t, models.ArticleStatusDraft, article.Status)
	assert.Equal(t, "analyse", article.SemanticAnalysis)
	require.NotNil(t, article.GenerationError)
	assert.Equal(t, "content: provider exploded", *article.GenerationError)
	assert.Nil(t, article.GenerationStage)
	assert.Equal(t, EventGenerationFailed, progress.types[len(progress.types)-1])

	require.Len(t, f.events.events, 1)
	assert.Equal(t, "content: provider exploded", f.events.events[0].Error)
}

func TestRun_PersonaDeletedMidRun(t *testing.T) {
	tests := []struct {
		name      string
		failAt    int
		wantError string
	}{
		{name: "completes", wantError: ""},
		{name: "fails", failAt: 1, wantError: "content: provider exploded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{})
			f.gen.replies = []string{"Contenu final"}
			f.gen.failAt = tt.failAt
			f.gen.gate = make(chan struct{})

			errCh := make(chan error, 1)
			go func() {
				_, err := f.svc.Run(context.Background(), owner, f.article.ID, nil)
				errCh <- err
			}()

			select {
			case <-f.gen.started:
			case <-time.After(2 * time.Second):
				t.Fatal("generation never reached the provider")
			}
			require.NoError(t, f.store.Personas().Delete(context.Background(), f.persona.ID, owner))
			close(f.gen.gate)

			select {
			case err := <-errCh:
				if tt.wantError == "" {
					require.NoError(t, err)
				} else {
					require.Error(t, err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("run did not finish")
			}

			article := f.reload(t)
			assert.Equal(t, models.ArticleStatusDraft, article.Status)
			assert.Nil(t, article.Persona)
			assert.Nil(t, article.GenerationStage)
			if tt.wantError == "" {
				assert.Nil(t, article.GenerationError)
				assert.Equal(t, "Contenu final", article.Content)
			} else {
				require.NotNil(t, article.GenerationError)
				assert.Equal(t, tt.wantError, *article.GenerationError)
			}
		})
	}
}

func TestRun_EmptyResponseFails(t *testing.T) {
	f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{})
	f.gen.replies = []string{"   "}

	_, err := f.svc.Run(context.Background(), owner, f.article.ID, nil)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestRun_Guards(t *testing.T) {
	tests := []struct {
		name   string
		status models.ArticleStatus
	}{
		{"already generating", models.ArticleStatusGeneration},
		{"published", models.ArticleStatusPublished},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{Status: tt.status})
			_, err := f.svc.Run(context.Background(), owner, f.article.ID, nil)
			assert.ErrorIs(t, err, domain.ErrConflict)
			assert.Empty(t, f.gen.calls())
		})
	}

	f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{})
	_, err := f.svc.Run(context.Background(), "", f.article.ID, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.svc.Run(context.Background(), "intruder", f.article.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelGeneration(t *testing.T) {
	f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{})
	f.gen.block = true

	errCh := make(chan error, 1)
	go func() {
		_, err := f.svc.Run(context.Background(), owner, f.article.ID, nil)
		errCh <- err
	}()

	select {
	case <-f.gen.started:
	case <-time.After(2 * time.Second):
		t.Fatal("generation never reached the provider")
	}
	assert.Equal(t, models.ArticleStatusGeneration, f.reload(t).Status)

	require.NoError(t, f.svc.CancelGeneration(context.Background(), owner, f.article.ID))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}

	article := f.reload(t)
	assert.Equal(t, models.ArticleStatusDraft, article.Status)
	require.NotNil(t, article.GenerationError)
	assert.Equal(t, "content: generation cancelled", *article.GenerationError)

	err := f.svc.CancelGeneration(context.Background(), owner, f.article.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStartGeneration_RunsInBackground(t *testing.T) {
	f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{})
	f.gen.replies = []string{"Contenu généré en arrière-plan"}

	started, err := f.svc.StartGeneration(context.Background(), owner, f.article.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStatusGeneration, started.Status)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.svc.Wait(ctx, f.article.ID))

	article := f.reload(t)
	assert.Equal(t, models.ArticleStatusDraft, article.Status)
	assert.Equal(t, "Contenu généré en arrière-plan", article.Content)
}

func TestRun_AutoPublishOnWordPress(t *testing.T) {
	user, pass := "admin", "secret"
	f := newFixture(t, models.Site{Type: models.SiteTypeWordPress, AutoPublish: true, WPUsername: &user, WPAppPassword: &pass},
		models.Article{})
	f.gen.replies = []string{"contenu"}

	article, err := f.svc.Run(context.Background(), owner, f.article.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{f.article.ID}, f.publisher.calls)
	assert.Equal(t, models.ArticleStatusPublished, article.Status)
}

func TestRecoverStale(t *testing.T) {
	f := newFixture(t, models.Site{Type: models.SiteTypeCustom}, models.Article{})
	ctx := context.Background()

	f.article.Status = models.ArticleStatusGeneration
	f.article.UpdatedAt = time.Now().Add(-time.Hour).UTC()
	require.NoError(t, f.store.Articles().Update(ctx, f.article))

	n, err := f.svc.RecoverStale(ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	article := f.reload(t)
	assert.Equal(t, models.ArticleStatusDraft, article.Status)
	require.NotNil(t, article.GenerationError)
	assert.Equal(t, InterruptedMessage, *article.GenerationError)
}
