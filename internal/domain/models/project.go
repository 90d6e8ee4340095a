package models

import "time"

type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Project groups a site and an optional persona under which articles are produced.
// Site and Persona are name snapshots refreshed when the source record changes.
type Project struct {
	ID           string        `json:"id" db:"id"`
	UserID       string        `json:"user_id" db:"user_id"`
	Name         string        `json:"name" db:"name"`
	Site         SiteRef       `json:"site"`
	Persona      *PersonaRef   `json:"persona,omitempty"`
	Status       ProjectStatus `json:"status" db:"status"`
	ArticleCount int           `json:"article_count" db:"article_count"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}
