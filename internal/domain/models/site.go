package models

import (
	"encoding/json"
	"time"
)

// SiteType is the publishing platform behind a site.
type SiteType string

const (
	SiteTypeWordPress SiteType = "wordpress"
	SiteTypeCustom    SiteType = "custom"
)

// SiteCategory describes what kind of website it is.
type SiteCategory string

const (
	SiteCategoryEcommerce   SiteCategory = "ecommerce"
	SiteCategoryBlog        SiteCategory = "blog"
	SiteCategoryCorporate   SiteCategory = "corporate"
	SiteCategoryPortfolio   SiteCategory = "portfolio"
	SiteCategoryEducational SiteCategory = "educational"
	SiteCategoryNews        SiteCategory = "news"
)

// SiteStatus is the result of the last connection check.
type SiteStatus string

const (
	SiteStatusConnected SiteStatus = "connected"
	SiteStatusError     SiteStatus = "error"
	SiteStatusPending   SiteStatus = "pending"
)

// Site is a publishing destination owned by one user.
type Site struct {
	ID             string       `json:"id" db:"id"`
	UserID         string       `json:"user_id" db:"user_id"`
	Name           string       `json:"name" db:"name"`
	URL            string       `json:"url" db:"url"`
	SitemapURL     *string      `json:"sitemap_url,omitempty" db:"sitemap_url"`
	Type           SiteType     `json:"type" db:"type"`
	Category       SiteCategory `json:"site_type" db:"site_type"`
	TargetAudience []string     `json:"target_audience" db:"target_audience"`
	WPUsername     *string      `json:"wp_username,omitempty" db:"wp_username"`
	WPAppPassword  *string      `json:"-" db:"wp_app_password"`
	Status         SiteStatus   `json:"status" db:"status"`
	LastSync       *time.Time   `json:"last_sync,omitempty" db:"last_sync"`
	ArticlesCount  int          `json:"articles_count" db:"articles_count"`
	Categories     []string     `json:"categories" db:"categories"`
	AutoPublish    bool         `json:"auto_publish" db:"auto_publish"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// HasWordPressCredentials reports whether both username and application password are set.
func (s *Site) HasWordPressCredentials() bool {
	return s.WPUsername != nil && *s.WPUsername != "" &&
		s.WPAppPassword != nil && *s.WPAppPassword != ""
}

// WordPressCredentials returns the site's own credentials, or nil when incomplete.
func (s *Site) WordPressCredentials() *WordPressCredentials {
	if !s.HasWordPressCredentials() {
		return nil
	}
	return &WordPressCredentials{
		URL:         s.URL,
		Username:    *s.WPUsername,
		AppPassword: *s.WPAppPassword,
	}
}

// MarshalJSON adds has_wp_credentials; the password itself never leaves the server.
func (s Site) MarshalJSON() ([]byte, error) {
	type alias Site
	return json.Marshal(struct {
		alias
		HasWPCredentials bool `json:"has_wp_credentials"`
	}{
		alias:            alias(s),
		HasWPCredentials: s.HasWordPressCredentials(),
	})
}

// SiteRef is the denormalized site snapshot embedded in a project.
type SiteRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
