package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
)

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}

type siteRepo struct{ s *Store }

func (r *siteRepo) Create(ctx context.Context, site *models.Site) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	site.ID = uuid.NewString()
	site.TargetAudience = cloneStrings(site.TargetAudience)
	site.Categories = cloneStrings(site.Categories)
	put(ctx, r.s.sites, site.ID, cloneSite(*site))
	return nil
}

func (r *siteRepo) GetByID(ctx context.Context, id, userID string) (*models.Site, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	site, ok := r.s.sites[id]
	if !ok || site.UserID != userID {
		return nil, notFound("site", id)
	}
	out := cloneSite(site)
	return &out, nil
}

func (r *siteRepo) List(ctx context.Context, userID string) ([]models.Site, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Site{}
	for _, site := range r.s.sites {
		if site.UserID == userID {
			out = append(out, cloneSite(site))
		}
	}
	slices.SortFunc(out, func(a, b models.Site) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), a.CreatedAt.Compare(b.CreatedAt))
	})
	return out, nil
}

func (r *siteRepo) Update(ctx context.Context, site *models.Site) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.sites[site.ID]
	if !ok || existing.UserID != site.UserID {
		return notFound("site", site.ID)
	}
	updated := cloneSite(*site)
	updated.ArticlesCount = existing.ArticlesCount
	updated.CreatedAt = existing.CreatedAt
	put(ctx, r.s.sites, site.ID, updated)
	return nil
}

func (r *siteRepo) Delete(ctx context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	site, ok := r.s.sites[id]
	if !ok || site.UserID != userID {
		return notFound("site", id)
	}
	for _, p := range r.s.projects {
		if p.Site.ID == id {
			return &domain.ConflictError{
				Message:      "site is used by one or more projects",
				ResourceType: "site",
				ResourceID:   id,
			}
		}
	}
	remove(ctx, r.s.sites, id)
	for pid, p := range r.s.personas {
		if p.SiteID != nil && *p.SiteID == id {
			p.SiteID = nil
			put(ctx, r.s.personas, pid, p)
		}
	}
	return nil
}

func (r *siteRepo) UpdateSyncState(ctx context.Context, id, userID string, status models.SiteStatus, categories []string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	site, ok := r.s.sites[id]
	if !ok || site.UserID != userID {
		return notFound("site", id)
	}
	site.Status = status
	if categories != nil {
		site.Categories = slices.Clone(categories)
	}
	site.LastSync = &at
	site.UpdatedAt = at
	put(ctx, r.s.sites, id, site)
	return nil
}

func (r *siteRepo) RecordPublish(ctx context.Context, id, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	site, ok := r.s.sites[id]
	if !ok || site.UserID != userID {
		return notFound("site", id)
	}
	site.ArticlesCount++
	site.LastSync = &at
	site.UpdatedAt = at
	put(ctx, r.s.sites, id, site)
	return nil
}

type personaRepo struct{ s *Store }

func (r *personaRepo) siteExists(p *models.Persona) bool {
	if p.SiteID == nil {
		return true
	}
	_, ok := r.s.sites[*p.SiteID]
	return ok
}

func (r *personaRepo) Create(ctx context.Context, persona *models.Persona) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.siteExists(persona) {
		return fmt.Errorf("persona site: %w", domain.ErrNotFound)
	}
	persona.ID = uuid.NewString()
	put(ctx, r.s.personas, persona.ID, clonePersona(*persona))
	return nil
}

func (r *personaRepo) GetByID(ctx context.Context, id, userID string) (*models.Persona, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.personas[id]
	if !ok || p.UserID != userID {
		return nil, notFound("persona", id)
	}
	out := clonePersona(p)
	return &out, nil
}

func (r *personaRepo) List(ctx context.Context, userID string) ([]models.Persona, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Persona{}
	for _, p := range r.s.personas {
		if p.UserID == userID {
			out = append(out, clonePersona(p))
		}
	}
	slices.SortFunc(out, func(a, b models.Persona) int {
		return cmp.Or(strings.Compare(a.LastName, b.LastName), strings.Compare(a.FirstName, b.FirstName))
	})
	return out, nil
}

func (r *personaRepo) Update(ctx context.Context, persona *models.Persona) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.personas[persona.ID]
	if !ok || existing.UserID != persona.UserID {
		return notFound("persona", persona.ID)
	}
	if !r.siteExists(persona) {
		return fmt.Errorf("persona site: %w", domain.ErrNotFound)
	}
	updated := clonePersona(*persona)
	updated.CreatedAt = existing.CreatedAt
	put(ctx, r.s.personas, persona.ID, updated)
	return nil
}

func (r *personaRepo) Delete(ctx context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.personas[id]
	if !ok || p.UserID != userID {
		return notFound("persona", id)
	}
	remove(ctx, r.s.personas, id)
	for pid, project := range r.s.projects {
		if project.Persona != nil && project.Persona.ID == id {
			project.Persona = nil
			put(ctx, r.s.projects, pid, project)
		}
	}
	for aid, a := range r.s.articles {
		if a.Persona != nil && a.Persona.ID == id {
			a.Persona = nil
			put(ctx, r.s.articles, aid, a)
		}
	}
	return nil
}

type projectRepo struct{ s *Store }

func (r *projectRepo) referencesExist(p *models.Project) bool {
	if site, ok := r.s.sites[p.Site.ID]; !ok || site.UserID != p.UserID {
		return false
	}
	if p.Persona != nil {
		if _, ok := r.s.personas[p.Persona.ID]; !ok {
			return false
		}
	}
	return true
}

func (r *projectRepo) Create(ctx context.Context, project *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.referencesExist(project) {
		return fmt.Errorf("project references: %w", domain.ErrNotFound)
	}
	project.ID = uuid.NewString()
	project.ArticleCount = 0
	put(ctx, r.s.projects, project.ID, cloneProject(*project))
	return nil
}

func (r *projectRepo) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.projects[id]
	if !ok || p.UserID != userID {
		return nil, notFound("project", id)
	}
	out := cloneProject(p)
	return &out, nil
}

func (r *projectRepo) List(ctx context.Context, userID string) ([]models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Project{}
	for _, p := range r.s.projects {
		if p.UserID == userID {
			out = append(out, cloneProject(p))
		}
	}
	slices.SortFunc(out, func(a, b models.Project) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

func (r *projectRepo) Update(ctx context.Context, project *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.projects[project.ID]
	if !ok || existing.UserID != project.UserID {
		return notFound("project", project.ID)
	}
	if !r.referencesExist(project) {
		return fmt.Errorf("project references: %w", domain.ErrNotFound)
	}
	updated := cloneProject(*project)
	updated.ArticleCount = existing.ArticleCount
	updated.CreatedAt = existing.CreatedAt
	put(ctx, r.s.projects, project.ID, updated)
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok || p.UserID != userID {
		return notFound("project", id)
	}
	remove(ctx, r.s.projects, id)
	for aid, a := range r.s.articles {
		if a.ProjectID == id {
			remove(ctx, r.s.articles, aid)
		}
	}
	return nil
}

func (r *projectRepo) AdjustArticleCount(ctx context.Context, id, userID string, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok || p.UserID != userID {
		return notFound("project", id)
	}
	if p.ArticleCount+delta < 0 {
		return &domain.ConflictError{
			Message:      "article count cannot go below zero",
			ResourceType: "project",
			ResourceID:   id,
		}
	}
	p.ArticleCount += delta
	p.UpdatedAt = r.s.now()
	put(ctx, r.s.projects, id, p)
	return nil
}

func (r *projectRepo) RefreshSiteName(ctx context.Context, userID, siteID, name string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.projects {
		if p.UserID == userID && p.Site.ID == siteID && p.Site.Name != name {
			p.Site.Name = name
			put(ctx, r.s.projects, id, p)
			n++
		}
	}
	return n, nil
}

func (r *projectRepo) RefreshPersonaName(ctx context.Context, userID, personaID, name string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.projects {
		if p.UserID == userID && p.Persona != nil && p.Persona.ID == personaID && p.Persona.Name != name {
			p.Persona = &models.PersonaRef{ID: personaID, Name: name}
			put(ctx, r.s.projects, id, p)
			n++
		}
	}
	return n, nil
}

func (r *projectRepo) ClearPersona(ctx context.Context, userID, personaID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.projects {
		if p.UserID == userID && p.Persona != nil && p.Persona.ID == personaID {
			p.Persona = nil
			p.UpdatedAt = r.s.now()
			put(ctx, r.s.projects, id, p)
			n++
		}
	}
	return n, nil
}

func (r *projectRepo) CountBySite(ctx context.Context, userID, siteID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, p := range r.s.projects {
		if p.UserID == userID && p.Site.ID == siteID {
			n++
		}
	}
	return n, nil
}

type articleRepo struct{ s *Store }

func (r *articleRepo) referencesExist(a *models.Article) bool {
	if p, ok := r.s.projects[a.ProjectID]; !ok || p.UserID != a.UserID {
		return false
	}
	if a.Persona != nil {
		if _, ok := r.s.personas[a.Persona.ID]; !ok {
			return false
		}
	}
	return true
}

func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.referencesExist(article) {
		return fmt.Errorf("article references: %w", domain.ErrNotFound)
	}
	article.ID = uuid.NewString()
	put(ctx, r.s.articles, article.ID, cloneArticle(*article))
	return nil
}

func (r *articleRepo) GetByID(ctx context.Context, id, userID string) (*models.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.articles[id]
	if !ok || a.UserID != userID {
		return nil, notFound("article", id)
	}
	out := cloneArticle(a)
	return &out, nil
}

func (r *articleRepo) list(match func(models.Article) bool) []models.Article {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []models.Article{}
	for _, a := range r.s.articles {
		if match(a) {
			out = append(out, cloneArticle(a))
		}
	}
	slices.SortFunc(out, func(a, b models.Article) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (r *articleRepo) List(ctx context.Context, userID string) ([]models.Article, error) {
	return r.list(func(a models.Article) bool { return a.UserID == userID }), nil
}

func (r *articleRepo) ListByProject(ctx context.Context, projectID, userID string) ([]models.Article, error) {
	return r.list(func(a models.Article) bool {
		return a.UserID == userID && a.ProjectID == projectID
	}), nil
}

func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.articles[article.ID]
	if !ok || existing.UserID != article.UserID {
		return notFound("article", article.ID)
	}
	updated := cloneArticle(*article)
	updated.ProjectID = existing.ProjectID
	updated.CreatedAt = existing.CreatedAt
	if !r.referencesExist(&updated) {
		return fmt.Errorf("article references: %w", domain.ErrNotFound)
	}
	put(ctx, r.s.articles, article.ID, updated)
	return nil
}

// generating returns the stored article if it belongs to userID and is in "generation".
func (r *articleRepo) generating(id, userID string) (models.Article, error) {
	a, ok := r.s.articles[id]
	if !ok || a.UserID != userID || a.Status != models.ArticleStatusGeneration {
		return models.Article{}, notFound("generating article", id)
	}
	return a, nil
}

func (r *articleRepo) SaveGenerationCheckpoint(ctx context.Context, id, userID string, checkpoint models.GenerationCheckpoint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, err := r.generating(id, userID)
	if err != nil {
		return err
	}
	a.GenerationStage = clonePtr(checkpoint.Stage)
	a.SemanticAnalysis = checkpoint.SemanticAnalysis
	a.Content = checkpoint.Content
	a.WordCount = checkpoint.WordCount
	a.UpdatedAt = r.s.now()
	put(ctx, r.s.articles, id, a)
	return nil
}

func (r *articleRepo) EndGeneration(ctx context.Context, id, userID string, generationError *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, err := r.generating(id, userID)
	if err != nil {
		return err
	}
	a.Status = models.ArticleStatusDraft
	a.GenerationStage = nil
	a.GenerationError = clonePtr(generationError)
	a.UpdatedAt = r.s.now()
	put(ctx, r.s.articles, id, a)
	return nil
}

func (r *articleRepo) Delete(ctx context.Context, id, userID string) (*models.Article, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.articles[id]
	if !ok || a.UserID != userID {
		return nil, notFound("article", id)
	}
	remove(ctx, r.s.articles, id)
	return &a, nil
}

func (r *articleRepo) RefreshPersonaName(ctx context.Context, userID, personaID, name string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.articles {
		if a.UserID == userID && a.Persona != nil && a.Persona.ID == personaID && a.Persona.Name != name {
			a.Persona = &models.PersonaRef{ID: personaID, Name: name}
			put(ctx, r.s.articles, id, a)
			n++
		}
	}
	return n, nil
}

func (r *articleRepo) ResetStaleGenerations(ctx context.Context, olderThan time.Time, message string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, a := range r.s.articles {
		if a.Status == models.ArticleStatusGeneration && a.UpdatedAt.Before(olderThan) {
			msg := message
			a.Status = models.ArticleStatusDraft
			a.GenerationStage = nil
			a.GenerationError = &msg
			a.UpdatedAt = r.s.now()
			put(ctx, r.s.articles, id, a)
			n++
		}
	}
	return n, nil
}

type settingsRepo struct{ s *Store }

func (r *settingsRepo) GetByUserID(ctx context.Context, userID string) (*models.UserSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.settings[userID]
	if !ok {
		return nil, nil
	}
	out := cloneSettings(st)
	return &out, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, settings *models.UserSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.settings[settings.UserID]; ok {
		settings.CreatedAt = existing.CreatedAt
	}
	put(ctx, r.s.settings, settings.UserID, cloneSettings(*settings))
	return nil
}
