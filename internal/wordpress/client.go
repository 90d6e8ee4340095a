// Package wordpress is a small client for the WordPress REST API authenticated
// with application passwords.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
)

const (
	postsPath      = "/wp-json/wp/v2/posts"
	currentUser    = "/wp-json/wp/v2/users/me"
	categoriesPath = "/wp-json/wp/v2/categories"

	// WordPress expects site-local time without offset in the "date" field.
	postDateLayout = "2006-01-02T15:04:05"

	maxErrorBody = 512
)

// Config tunes the client. Zero values fall back to defaults.
type Config struct {
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client calls WordPress sites, rate limited per host.
type Client struct {
	http   *http.Client
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var _ services.WordPressClient = (*Client)(nil)

// NewClient creates a client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		http:     httpClient,
		cfg:      cfg,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the limiter shared by every request to host.
func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(c.cfg.RequestsPerSecond), c.cfg.Burst)
		c.limiters[host] = lim
	}
	return lim
}

type postPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
	Date    string `json:"date,omitempty"`
}

func newPostPayload(post models.WPPost) postPayload {
	payload := postPayload{
		Title:   post.Title,
		Content: post.Content,
		Status:  post.Status,
	}
	if post.Date != nil {
		payload.Date = post.Date.UTC().Format(postDateLayout)
	}
	if payload.Status == "" {
		payload.Status = models.WPStatusPublish
	}
	return payload
}

// CreatePost creates a post. Scheduled posts carry status "future" and a date.
func (c *Client) CreatePost(ctx context.Context, creds models.WordPressCredentials, post models.WPPost) (*models.WPPostResult, error) {
	var out models.WPPostResult
	if err := c.do(ctx, creds, http.MethodPost, postsPath, nil, newPostPayload(post), &out); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	c.logger.Info("wordpress post created",
		"site", creds.URL,
		"post_id", out.ID,
		"status", out.Status,
	)
	return &out, nil
}

// UpdatePost rewrites an existing post, e.g. to publish one that was scheduled.
func (c *Client) UpdatePost(ctx context.Context, creds models.WordPressCredentials, postID int64, post models.WPPost) (*models.WPPostResult, error) {
	var out models.WPPostResult
	path := postsPath + "/" + strconv.FormatInt(postID, 10)
	if err := c.do(ctx, creds, http.MethodPost, path, nil, newPostPayload(post), &out); err != nil {
		return nil, fmt.Errorf("update post %d: %w", postID, err)
	}

	c.logger.Info("wordpress post updated",
		"site", creds.URL,
		"post_id", out.ID,
		"status", out.Status,
	)
	return &out, nil
}

// CurrentUser returns the account behind the credentials; it doubles as a connection check.
func (c *Client) CurrentUser(ctx context.Context, creds models.WordPressCredentials) (*models.WPUser, error) {
	var out models.WPUser
	if err := c.do(ctx, creds, http.MethodGet, currentUser, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &out, nil
}

// ListCategories returns the first page (100 entries) of the site's categories.
func (c *Client) ListCategories(ctx context.Context, creds models.WordPressCredentials) ([]models.WPCategory, error) {
	q := url.Values{}
	q.Set("per_page", "100")

	var out []models.WPCategory
	if err := c.do(ctx, creds, http.MethodGet, categoriesPath, q, nil, &out); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, creds models.WordPressCredentials, method, path string, query url.Values, body, out any) error {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(creds.URL), "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return fmt.Errorf("%w: invalid site url %q", domain.ErrValidation, creds.URL)
	}
	endpoint := base.JoinPath(path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	if err := c.limiterFor(base.Host).Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(creds.Username, creds.AppPassword)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
		c.logger.Warn("wordpress request failed",
			"host", base.Host,
			"path", path,
			"status", resp.StatusCode,
		)
		return &APIError{StatusCode: resp.StatusCode, Body: truncate(string(raw), maxErrorBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrUpstream, path, err)
	}
	return nil
}

// APIError is a non-2xx WordPress response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wordpress returned %d: %s", e.StatusCode, e.Body)
}

// Unwrap reports WordPress failures as upstream errors, including 401s:
// the caller's own session is still valid.
func (e *APIError) Unwrap() error { return domain.ErrUpstream }

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
