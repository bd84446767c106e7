package models

import "time"

// Author is the denormalized user view embedded in every post read.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Post represents a blog post.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	Cover     string    `json:"cover,omitempty"` // Public locator of the cover object
	CoverID   string    `json:"-"`               // Storage identity of the cover object
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostFields are the mutable columns of a post. Updates replace all of them.
type PostFields struct {
	Title   string
	Summary string
	Content string
	Cover   string
	CoverID string
}
