package content

import (
	"context"
	"errors"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
	"contentpilot/internal/service/prompt"
)

// ArticleContext is an article with the records its prompt is built from.
type ArticleContext struct {
	Article *models.Article
	Project *models.Project
	Site    *models.Site
	Persona *models.Persona // nil when neither the article nor its project has one
}

// PromptData returns the prompt builder input for the article.
func (c *ArticleContext) PromptData() prompt.Data {
	return prompt.Data{
		Title:                c.Article.Title,
		Topic:                c.Article.Topic,
		ContentType:          c.Article.ContentType,
		SemanticAnalysisType: c.Article.SemanticAnalysisType,
		Persona:              prompt.NewPersonaBrief(c.Persona),
		Site:                 prompt.NewSiteBrief(c.Site),
	}
}

// ContextLoader assembles ArticleContext values from the repositories.
type ContextLoader struct {
	Projects repositories.ProjectRepository
	Sites    repositories.SiteRepository
	Personas repositories.PersonaRepository
}

// Load reads the project, site and persona of an article. The article's own
// persona wins over the project's; a persona deleted meanwhile is skipped.
func (l ContextLoader) Load(ctx context.Context, ownerID string, article *models.Article) (*ArticleContext, error) {
	project, err := l.Projects.GetByID(ctx, article.ProjectID, ownerID)
	if err != nil {
		return nil, err
	}
	site, err := l.Sites.GetByID(ctx, project.Site.ID, ownerID)
	if err != nil {
		return nil, err
	}

	out := &ArticleContext{Article: article, Project: project, Site: site}

	ref := article.Persona
	if ref == nil {
		ref = project.Persona
	}
	if ref != nil {
		persona, err := l.Personas.GetByID(ctx, ref.ID, ownerID)
		switch {
		case err == nil:
			out.Persona = persona
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}

	return out, nil
}
