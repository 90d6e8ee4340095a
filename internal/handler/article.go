package handler

import (
	"log/slog"
	"net/http"

	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/httputil"
)

// ArticleHandler handles article HTTP requests
type ArticleHandler struct {
	articleService services.ArticleService
	logger         *slog.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articleService services.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		logger:         logger,
	}
}

// ListArticles retrieves the user's articles across projects
// GET /api/articles?status=&project_id=&content_type=&q=
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	filter := services.ArticleFilter{
		Status:      models.ArticleStatus(httputil.QueryParam(r, "status")),
		ProjectID:   httputil.QueryParam(r, "project_id"),
		ContentType: models.ContentType(httputil.QueryParam(r, "content_type")),
		Query:       httputil.QueryParam(r, "q"),
	}

	articles, err := h.articleService.ListArticles(r.Context(), httputil.GetUserID(r), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, articles)
}

// ListProjectArticles retrieves the articles of one project
// GET /api/projects/{id}/articles
func (h *ArticleHandler) ListProjectArticles(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	articles, err := h.articleService.ListProjectArticles(r.Context(), httputil.GetUserID(r), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, articles)
}

// CreateArticle adds an article to a project
// POST /api/projects/{id}/articles
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req services.CreateArticleRequest
	if !parseBody(w, r, &req) {
		return
	}

	article, err := h.articleService.CreateArticle(r.Context(), httputil.GetUserID(r), projectID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, article)
}

// GetArticle retrieves an article by ID
// GET /api/articles/{id}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Article ID")
	if !ok {
		return
	}

	article, err := h.articleService.GetArticle(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, article)
}

// UpdateArticle updates an article
// PATCH /api/articles/{id}
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Article ID")
	if !ok {
		return
	}

	var req services.UpdateArticleRequest
	if !parseBody(w, r, &req) {
		return
	}

	article, err := h.articleService.UpdateArticle(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, article)
}

// DeleteArticle deletes an article
// DELETE /api/articles/{id}
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Article ID")
	if !ok {
		return
	}

	if err := h.articleService.DeleteArticle(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// GetPrompt returns the generation prompt without calling the LLM
// GET /api/articles/{id}/prompt
func (h *ArticleHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Article ID")
	if !ok {
		return
	}

	prompt, err := h.articleService.BuildPrompt(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"article_id": id,
		"prompt":     prompt,
	})
}
