package content

import (
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
)

// FilterSites keeps sites matching status, type and a free-text query over name and URL.
func FilterSites(sites []models.Site, f services.SiteFilter) []models.Site {
	out := make([]models.Site, 0, len(sites))
	for _, s := range sites {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.Type != "" && s.Type != f.Type {
			continue
		}
		if !containsFold(f.Query, s.Name, s.URL) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FilterPersonas keeps personas attached to a site and matching a query over names and profession.
func FilterPersonas(personas []models.Persona, f services.PersonaFilter) []models.Persona {
	out := make([]models.Persona, 0, len(personas))
	for _, p := range personas {
		if f.SiteID != "" && (p.SiteID == nil || *p.SiteID != f.SiteID) {
			continue
		}
		if !containsFold(f.Query, p.FirstName, p.LastName, p.DisplayName(), p.Profession) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterProjects keeps projects matching status, site, persona and a query over project, site and persona names.
func FilterProjects(projects []models.Project, f services.ProjectFilter) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.SiteID != "" && p.Site.ID != f.SiteID {
			continue
		}
		personaName := ""
		if p.Persona != nil {
			personaName = p.Persona.Name
		}
		if f.PersonaID != "" && (p.Persona == nil || p.Persona.ID != f.PersonaID) {
			continue
		}
		if !containsFold(f.Query, p.Name, p.Site.Name, personaName) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterArticles keeps articles matching status, project, content type and a query over title and topic.
func FilterArticles(articles []models.Article, f services.ArticleFilter) []models.Article {
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.ProjectID != "" && a.ProjectID != f.ProjectID {
			continue
		}
		if f.ContentType != "" && a.ContentType != f.ContentType {
			continue
		}
		if !containsFold(f.Query, a.Title, a.Topic) {
			continue
		}
		out = append(out, a)
	}
	return out
}
