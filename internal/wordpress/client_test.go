package wordpress

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
)

func newTestClient() *Client {
	return NewClient(Config{RequestsPerSecond: 1000, Burst: 10}, nil, slog.New(slog.DiscardHandler))
}

func creds(url string) models.WordPressCredentials {
	return models.WordPressCredentials{URL: url, Username: "admin", AppPassword: "abcd efgh"}
}

func TestCreatePost(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "abcd efgh", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":42,"link":"https://blog.example/?p=42","status":"future"}`))
	}))
	defer srv.Close()

	date := time.Date(2030, 5, 1, 9, 30, 0, 0, time.UTC)
	res, err := newTestClient().CreatePost(context.Background(), creds(srv.URL+"/"), models.WPPost{
		Title:   "Hello",
		Content: "<p>World</p>",
		Status:  models.WPStatusFuture,
		Date:    &date,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.ID)
	assert.Equal(t, "https://blog.example/?p=42", res.Link)

	assert.Equal(t, "Hello", got["title"])
	assert.Equal(t, "future", got["status"])
	assert.Equal(t, "2030-05-01T09:30:00", got["date"])
}

func TestCreatePost_DefaultsToPublishWithoutDate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":1,"link":"l","status":"publish"}`))
	}))
	defer srv.Close()

	_, err := newTestClient().CreatePost(context.Background(), creds(srv.URL), models.WPPost{Title: "T"})
	require.NoError(t, err)
	assert.Equal(t, "publish", got["status"])
	assert.NotContains(t, got, "date")
}

func TestErrorsCarryTruncatedBody(t *testing.T) {
	long := `{"code":"rest_cannot_create","message":"` + strings.Repeat("x", 2000) + `"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(long))
	}))
	defer srv.Close()

	_, err := newTestClient().CurrentUser(context.Background(), creds(srv.URL))
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "rest_cannot_create")
	assert.LessOrEqual(t, len(apiErr.Body), maxErrorBody+3)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestListCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blog/wp-json/wp/v2/categories", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[{"id":1,"name":"News","slug":"news"},{"id":2,"name":"Recipes","slug":"recipes"}]`))
	}))
	defer srv.Close()

	cats, err := newTestClient().ListCategories(context.Background(), creds(srv.URL+"/blog"))
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Recipes", cats[1].Name)
}

func TestInvalidSiteURL(t *testing.T) {
	_, err := newTestClient().CurrentUser(context.Background(), creds("ftp://blog.example"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLimiterPerHost(t *testing.T) {
	c := newTestClient()
	a := c.limiterFor("a.example")
	assert.Same(t, a, c.limiterFor("a.example"))
	assert.NotSame(t, a, c.limiterFor("b.example"))
}

func TestRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RequestsPerSecond: 0.001, Burst: 1}, nil, slog.New(slog.DiscardHandler))
	_, err := c.CurrentUser(context.Background(), creds(srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.CurrentUser(ctx, creds(srv.URL))
	assert.Error(t, err, "the second call cannot get a token before the deadline")
}

func TestUpdatePost(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wp/v2/posts/42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":42,"link":"https://blog.example/?p=42","status":"publish"}`))
	}))
	defer srv.Close()

	date := time.Date(2030, 5, 1, 9, 30, 0, 0, time.UTC)
	res, err := newTestClient().UpdatePost(context.Background(), creds(srv.URL), 42, models.WPPost{
		Title:   "Hello",
		Content: "<p>World</p>",
		Status:  models.WPStatusPublish,
		Date:    &date,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.ID)
	assert.Equal(t, "publish", got["status"])
	assert.Equal(t, "2030-05-01T09:30:00", got["date"])
}
