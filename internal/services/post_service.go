package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/inkpost-be/internal/auth"
	"github.com/isdelr/inkpost-be/internal/media"
	"github.com/isdelr/inkpost-be/internal/models"
	"github.com/isdelr/inkpost-be/internal/repository"
	"github.com/rs/zerolog/log"
)

// RecentPostsLimit caps GET /post. There is no pagination.
const RecentPostsLimit = 20

// MediaStore is the object storage used for post covers.
type MediaStore interface {
	Upload(ctx context.Context, body io.ReadSeeker, contentType string) (media.Object, error)
	Delete(ctx context.Context, id string) error
}

// Upload is a cover file waiting to be forwarded to the MediaStore.
type Upload struct {
	Body        io.ReadSeeker
	ContentType string
}

// PostInput carries the text fields of a create or update request.
type PostInput struct {
	Title   string
	Summary string
	Content string
}

func (in PostInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Summary) == "" {
		missing = append(missing, "summary")
	}
	if strings.TrimSpace(in.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	Create(ctx context.Context, claims *auth.Claims, in PostInput, upload *Upload) (models.Post, error)
	Get(ctx context.Context, id string) (models.Post, error)
	ListRecent(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, claims *auth.Claims, id string, in PostInput, upload *Upload) (models.Post, error)
	Delete(ctx context.Context, claims *auth.Claims, id string) error
	Authorize(ctx context.Context, claims *auth.Claims, id string) (models.Post, error)
}

// PostService runs the post workflows. Every mutation goes through
// loadOwned, so only the author can change or remove a post.
type PostService struct {
	posts  repository.PostRepository
	media  MediaStore
	events EventServiceProvider
}

// NewPostService creates a new PostService. events may be nil.
func NewPostService(posts repository.PostRepository, mediaStore MediaStore, events EventServiceProvider) *PostService {
	return &PostService{posts: posts, media: mediaStore, events: events}
}

// Create stores a new post authored by the caller. The cover, if any, is
// uploaded before the row is written.
func (s *PostService) Create(ctx context.Context, claims *auth.Claims, in PostInput, upload *Upload) (models.Post, error) {
	if claims == nil {
		return models.Post{}, auth.ErrInvalidToken
	}
	if err := in.validate(); err != nil {
		return models.Post{}, err
	}

	fields := models.PostFields{Title: in.Title, Summary: in.Summary, Content: in.Content}

	var uploaded *media.Object
	if upload != nil {
		obj, err := s.media.Upload(ctx, upload.Body, upload.ContentType)
		if err != nil {
			return models.Post{}, err
		}
		uploaded = &obj
		fields.Cover, fields.CoverID = obj.URL, obj.ID
	}

	post, err := s.posts.Create(ctx, fields, claims.UserID)
	if err != nil {
		if uploaded != nil {
			s.discardMedia(ctx, "", uploaded.ID, "cover of a post that failed to save")
		}
		return models.Post{}, err
	}

	s.record(ctx, EventPostCreate, "info", fmt.Sprintf("Post '%s' created by %s.", post.Title, post.Author.Username), post.ID)
	return post, nil
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, id string) (models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Post{}, fmt.Errorf("post %s: %w", id, ErrNotFound)
		}
		return models.Post{}, err
	}
	return post, nil
}

// ListRecent returns the newest posts.
func (s *PostService) ListRecent(ctx context.Context) ([]models.Post, error) {
	return s.posts.ListRecent(ctx, RecentPostsLimit)
}

// Update replaces the title, summary and content of a post owned by the
// caller. With a new cover, the upload happens first, then the old cover is
// removed, then the row is written. Without one, the stored cover is kept.
func (s *PostService) Update(ctx context.Context, claims *auth.Claims, id string, in PostInput, upload *Upload) (models.Post, error) {
	post, err := s.loadOwned(ctx, claims, id)
	if err != nil {
		return models.Post{}, err
	}
	if err := in.validate(); err != nil {
		return models.Post{}, err
	}

	fields := models.PostFields{
		Title:   in.Title,
		Summary: in.Summary,
		Content: in.Content,
		Cover:   post.Cover,
		CoverID: post.CoverID,
	}

	var uploaded *media.Object
	if upload != nil {
		obj, err := s.media.Upload(ctx, upload.Body, upload.ContentType)
		if err != nil {
			return models.Post{}, err
		}
		uploaded = &obj
		if old := coverID(post); old != "" {
			s.discardMedia(ctx, post.ID, old, "replaced cover")
		}
		fields.Cover, fields.CoverID = obj.URL, obj.ID
	}

	updated, err := s.posts.Update(ctx, post.ID, fields)
	if err != nil {
		if uploaded != nil {
			s.discardMedia(ctx, post.ID, uploaded.ID, "cover of an update that failed to save")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return models.Post{}, fmt.Errorf("post %s: %w", id, ErrNotFound)
		}
		return models.Post{}, err
	}

	s.record(ctx, EventPostUpdate, "info", fmt.Sprintf("Post '%s' updated.", updated.Title), updated.ID)
	return updated, nil
}

// Delete removes a post owned by the caller. The row goes first; the cover
// object is cleaned up afterwards on a best-effort basis.
func (s *PostService) Delete(ctx context.Context, claims *auth.Claims, id string) error {
	post, err := s.loadOwned(ctx, claims, id)
	if err != nil {
		return err
	}

	if err := s.posts.DeleteByID(ctx, post.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("post %s: %w", id, ErrNotFound)
		}
		return err
	}

	if old := coverID(post); old != "" {
		s.discardMedia(ctx, post.ID, old, "cover of a deleted post")
	}

	s.record(ctx, EventPostDelete, "info", fmt.Sprintf("Post '%s' deleted.", post.Title), post.ID)
	return nil
}

// Authorize returns the post if the caller may change it. Handlers call it
// before reading a request body; Update and Delete check again.
func (s *PostService) Authorize(ctx context.Context, claims *auth.Claims, id string) (models.Post, error) {
	return s.loadOwned(ctx, claims, id)
}

// loadOwned fetches the post and checks that the caller is its author.
func (s *PostService) loadOwned(ctx context.Context, claims *auth.Claims, id string) (models.Post, error) {
	if claims == nil {
		return models.Post{}, auth.ErrInvalidToken
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return models.Post{}, err
	}

	if !SameUser(post.Author.ID, claims.UserID) {
		return models.Post{}, fmt.Errorf("post %s: %w", id, ErrForbidden)
	}
	return post, nil
}

// SameUser compares two user references by their canonical string form.
func SameUser(a, b string) bool {
	ca, cb := canonicalID(a), canonicalID(b)
	return ca != "" && ca == cb
}

func canonicalID(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

// coverID prefers the stored object id and falls back to the locator.
func coverID(post models.Post) string {
	if post.CoverID != "" {
		return post.CoverID
	}
	if post.Cover != "" {
		return media.IDFromLocator(post.Cover)
	}
	return ""
}

// discardMedia deletes an object without failing the caller. Failures leave an
// orphan behind, which is logged and recorded as an event.
func (s *PostService) discardMedia(ctx context.Context, postID, mediaID, reason string) {
	if err := s.media.Delete(ctx, mediaID); err != nil {
		log.Warn().Err(err).Str("post_id", postID).Str("media_id", mediaID).Str("reason", reason).Msg("Failed to delete media object")
		s.record(ctx, EventMediaOrphan, "warn", fmt.Sprintf("Media object '%s' (%s) could not be deleted: %v", mediaID, reason, err), postID)
	}
}

func (s *PostService) record(ctx context.Context, eventType, level, message, postID string) {
	if s.events == nil {
		return
	}
	var ref *string
	if postID != "" {
		ref = &postID
	}
	if err := s.events.CreateEvent(ctx, eventType, level, message, ref); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}
