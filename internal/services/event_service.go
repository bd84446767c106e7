package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/inkpost-be/internal/database"
	"github.com/isdelr/inkpost-be/internal/models"
)

// Event types written by PostService.
const (
	EventPostCreate  = "post.create"
	EventPostUpdate  = "post.update"
	EventPostDelete  = "post.delete"
	EventMediaOrphan = "media.orphan"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, postID *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// EventService provides business logic for event management.
type EventService struct {
	db *database.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *database.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, postID *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		PostID:    postID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := s.db.ExecContext(ctx,
		s.db.Rebind("INSERT INTO events (id, type, level, message, post_id, created_at) VALUES (?, ?, ?, ?, ?, ?)"),
		event.ID, event.Type, event.Level, event.Message, event.PostID, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		s.db.Rebind("SELECT id, type, level, message, post_id, created_at FROM events ORDER BY created_at DESC LIMIT ?"), limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.PostID, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
