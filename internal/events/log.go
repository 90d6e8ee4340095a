package events

import (
	"context"
	"log/slog"

	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
)

// LogPublisher writes events to the log. It is used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

var _ services.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event models.Event) error {
	p.logger.InfoContext(ctx, "event",
		"type", event.Type,
		"article_id", event.ArticleID,
		"project_id", event.ProjectID,
		"user_id", event.UserID,
		"status", event.Status,
		"error", event.Error,
	)
	return nil
}
