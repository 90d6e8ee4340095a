package models

import "time"

type ArticleStatus string

const (
	ArticleStatusDraft      ArticleStatus = "draft"
	ArticleStatusScheduled  ArticleStatus = "scheduled"
	ArticleStatusPublished  ArticleStatus = "published"
	ArticleStatusGeneration ArticleStatus = "generation"
)

type ContentType string

const (
	ContentTypeBlog       ContentType = "blog"
	ContentTypeComparison ContentType = "comparison"
	ContentTypeRecipe     ContentType = "recipe"
	ContentTypeProduct    ContentType = "product"
)

type SemanticAnalysisType string

const (
	SemanticAnalysisNone   SemanticAnalysisType = "none"
	SemanticAnalysisAI     SemanticAnalysisType = "ai"
	SemanticAnalysisScrape SemanticAnalysisType = "scrape"
)

// Generation stages recorded on an article while the orchestrator runs.
const (
	StageSemantic = "semantic"
	StageContent  = "content"
	StageHumanize = "humanize"
)

// Article is a piece of content belonging to a project.
type Article struct {
	ID                   string               `json:"id" db:"id"`
	UserID               string               `json:"user_id" db:"user_id"`
	ProjectID            string               `json:"project_id" db:"project_id"`
	Title                string               `json:"title" db:"title"`
	Topic                string               `json:"topic" db:"topic"`
	Content              string               `json:"content" db:"content"`
	Status               ArticleStatus        `json:"status" db:"status"`
	PublishDate          *time.Time           `json:"publish_date,omitempty" db:"publish_date"`
	Persona              *PersonaRef          `json:"persona,omitempty"`
	WordCount            int                  `json:"word_count" db:"word_count"`
	ContentType          ContentType          `json:"content_type" db:"content_type"`
	SemanticAnalysisType SemanticAnalysisType `json:"semantic_analysis_type" db:"semantic_analysis_type"`
	Humanize             bool                 `json:"humanize" db:"humanize"`
	SemanticAnalysis     string               `json:"semantic_analysis,omitempty" db:"semantic_analysis"`
	GenerationStage      *string              `json:"generation_stage,omitempty" db:"generation_stage"`
	GenerationError      *string              `json:"generation_error,omitempty" db:"generation_error"`
	WordPressPostID      *int64               `json:"wordpress_post_id,omitempty" db:"wordpress_post_id"`
	PublishedURL         *string              `json:"published_url,omitempty" db:"published_url"`
	CreatedAt            time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at" db:"updated_at"`
}

// GenerationCheckpoint holds the columns the orchestrator writes while a run
// is in progress. Everything else on the article row is left alone.
type GenerationCheckpoint struct {
	Stage            *string
	SemanticAnalysis string
	Content          string
	WordCount        int
}

// userTransitions are the status changes a user may request directly.
// Entering and leaving "generation" belongs to the generation orchestrator.
var userTransitions = map[ArticleStatus][]ArticleStatus{
	ArticleStatusDraft:     {ArticleStatusScheduled, ArticleStatusPublished},
	ArticleStatusScheduled: {ArticleStatusDraft, ArticleStatusPublished},
}

// CanUserTransition reports whether a user-requested status change is allowed.
func CanUserTransition(from, to ArticleStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range userTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsGenerating reports whether the orchestrator currently owns the article.
func (a *Article) IsGenerating() bool {
	return a.Status == ArticleStatusGeneration
}
