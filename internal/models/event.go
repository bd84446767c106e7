package models

import "time"

// Event represents an auditable action on a post or its media.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "post.create", "media.orphan"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	PostID    *string   `json:"postId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
