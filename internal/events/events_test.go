package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain/models"
)

func TestEncode(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	body, err := encode(models.Event{
		Type:       models.EventArticlePublished,
		UserID:     "u1",
		ArticleID:  "a1",
		ProjectID:  "p1",
		Status:     "published",
		OccurredAt: at,
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "article.published", got["type"])
	assert.Equal(t, "a1", got["article_id"])
	assert.Equal(t, "2025-03-01T10:00:00Z", got["occurred_at"])
	assert.NotContains(t, got, "error")
}

func TestEncode_StampsMissingTime(t *testing.T) {
	body, err := encode(models.Event{Type: models.EventArticleCreated})
	require.NoError(t, err)

	var got models.Event
	require.NoError(t, json.Unmarshal(body, &got))
	assert.WithinDuration(t, time.Now(), got.OccurredAt, time.Minute)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, pub.Publish(context.Background(), models.Event{Type: models.EventArticleDeleted, ArticleID: "a1"}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "event", line["msg"])
	assert.Equal(t, "article.deleted", line["type"])
	assert.Equal(t, "a1", line["article_id"])
}
