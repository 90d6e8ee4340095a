package models

import "time"

// WordPress post statuses used when publishing.
const (
	WPStatusPublish = "publish"
	WPStatusFuture  = "future"
)

// WPPost is the payload sent to /wp-json/wp/v2/posts.
type WPPost struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Status  string     `json:"status"`
	Date    *time.Time `json:"-"`
}

// WPPostResult is the subset of the created post we keep.
type WPPostResult struct {
	ID     int64  `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// WPUser is returned by /wp-json/wp/v2/users/me.
type WPUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// WPCategory is one entry of /wp-json/wp/v2/categories.
type WPCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
