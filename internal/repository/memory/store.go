// Package memory keeps every repository in process memory. It backs the
// server when no DATABASE_URL is configured and the service tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
)

// Store holds all entities. Each repository view locks mu for its own call;
// ExecTx serializes units of work and undoes their writes when fn fails.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	sites    map[string]models.Site
	personas map[string]models.Persona
	projects map[string]models.Project
	articles map[string]models.Article
	settings map[string]models.UserSettings

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sites:    map[string]models.Site{},
		personas: map[string]models.Persona{},
		projects: map[string]models.Project{},
		articles: map[string]models.Article{},
		settings: map[string]models.UserSettings{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Sites returns the site repository view
func (s *Store) Sites() repositories.SiteRepository { return &siteRepo{s} }

// Personas returns the persona repository view
func (s *Store) Personas() repositories.PersonaRepository { return &personaRepo{s} }

// Projects returns the project repository view
func (s *Store) Projects() repositories.ProjectRepository { return &projectRepo{s} }

// Articles returns the article repository view
func (s *Store) Articles() repositories.ArticleRepository { return &articleRepo{s} }

// UserSettings returns the settings repository view
func (s *Store) UserSettings() repositories.UserSettingsRepository { return &settingsRepo{s} }

// TxManager returns the transaction manager over this store
func (s *Store) TxManager() repositories.TransactionManager { return &txManager{s} }

type txKey struct{}

type txManager struct{ s *Store }

// undoLog holds one step per key written inside a transaction; each step puts
// the key back the way it was.
type undoLog struct {
	steps []func()
}

// ExecTx runs fn with all-or-nothing semantics. Nested calls join the outer unit.
// Only keys fn wrote are rolled back; concurrent writes elsewhere are kept.
func (tm *txManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	tm.s.txMu.Lock()
	defer tm.s.txMu.Unlock()

	log := &undoLog{}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		tm.s.rollback(log)
		return err
	}
	return nil
}

func (s *Store) rollback(log *undoLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(log.steps) - 1; i >= 0; i-- {
		log.steps[i]()
	}
}

// put and remove write through the transaction's undo log, if any.
// Callers hold s.mu.

func put[V any](ctx context.Context, m map[string]V, key string, v V) {
	remember(ctx, m, key)
	m[key] = v
}

func remove[V any](ctx context.Context, m map[string]V, key string) {
	remember(ctx, m, key)
	delete(m, key)
}

func remember[V any](ctx context.Context, m map[string]V, key string) {
	log, ok := ctx.Value(txKey{}).(*undoLog)
	if !ok {
		return
	}
	prev, existed := m[key]
	log.steps = append(log.steps, func() {
		if existed {
			m[key] = prev
		} else {
			delete(m, key)
		}
	})
}

// Stored values never share slices or pointers with callers.

func cloneSite(v models.Site) models.Site {
	v.TargetAudience = cloneStrings(v.TargetAudience)
	v.Categories = cloneStrings(v.Categories)
	v.SitemapURL = clonePtr(v.SitemapURL)
	v.WPUsername = clonePtr(v.WPUsername)
	v.WPAppPassword = clonePtr(v.WPAppPassword)
	v.LastSync = clonePtr(v.LastSync)
	return v
}

func clonePersona(v models.Persona) models.Persona {
	v.Goals = cloneStrings(v.Goals)
	v.Challenges = cloneStrings(v.Challenges)
	v.Interests = cloneStrings(v.Interests)
	v.InformationSources = cloneStrings(v.InformationSources)
	v.SiteID = clonePtr(v.SiteID)
	return v
}

func cloneProject(v models.Project) models.Project {
	v.Persona = clonePtr(v.Persona)
	return v
}

func cloneArticle(v models.Article) models.Article {
	v.PublishDate = clonePtr(v.PublishDate)
	v.Persona = clonePtr(v.Persona)
	v.GenerationStage = clonePtr(v.GenerationStage)
	v.GenerationError = clonePtr(v.GenerationError)
	v.WordPressPostID = clonePtr(v.WordPressPostID)
	v.PublishedURL = clonePtr(v.PublishedURL)
	return v
}

func cloneSettings(v models.UserSettings) models.UserSettings {
	v.AIAPIKey = clonePtr(v.AIAPIKey)
	v.WordPress = clonePtr(v.WordPress)
	v.Billing = clonePtr(v.Billing)
	return v
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
