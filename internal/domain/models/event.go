package models

import "time"

// Article lifecycle events published on the event bus.
const (
	EventArticleCreated   = "article.created"
	EventArticleGenerated = "article.generated"
	EventArticlePublished = "article.published"
	EventArticleDeleted   = "article.deleted"
)

// Event is the message body published for downstream consumers.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	ArticleID  string    `json:"article_id"`
	ProjectID  string    `json:"project_id"`
	Status     string    `json:"status,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
