package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/inkpost-be/internal/database"
	"github.com/isdelr/inkpost-be/internal/models"
)

// PostRepository persists posts and serves the author-joined read view.
type PostRepository interface {
	Create(ctx context.Context, fields models.PostFields, authorID string) (models.Post, error)
	FindByID(ctx context.Context, id string) (models.Post, error)
	ListRecent(ctx context.Context, limit int) ([]models.Post, error)
	Update(ctx context.Context, id string, fields models.PostFields) (models.Post, error)
	DeleteByID(ctx context.Context, id string) error
}

// SQLPostRepository implements PostRepository on a SQL database.
type SQLPostRepository struct {
	db *database.DB
}

// NewPostRepository creates a new SQLPostRepository.
func NewPostRepository(db *database.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

const postSelect = `SELECT p.id, p.title, p.summary, p.content, p.cover, p.cover_id, p.created_at, u.id, u.username
	FROM posts p
	JOIN users u ON u.id = p.author_id`

// Create inserts a post owned by authorID and returns its read view.
func (r *SQLPostRepository) Create(ctx context.Context, fields models.PostFields, authorID string) (models.Post, error) {
	id := uuid.New().String()

	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO posts (id, title, summary, content, cover, cover_id, author_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		id, fields.Title, fields.Summary, fields.Content, fields.Cover, fields.CoverID, authorID, now())
	if err != nil {
		return models.Post{}, fmt.Errorf("db error: %w", err)
	}
	return r.FindByID(ctx, id)
}

// FindByID retrieves a single post by id.
func (r *SQLPostRepository) FindByID(ctx context.Context, id string) (models.Post, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(postSelect+" WHERE p.id = ?"), id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

// ListRecent returns at most limit posts, newest first.
func (r *SQLPostRepository) ListRecent(ctx context.Context, limit int) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, r.db.Rebind(postSelect+" ORDER BY p.created_at DESC, p.id DESC LIMIT ?"), limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return posts, nil
}

// Update replaces every mutable field of the post. The author is never touched.
func (r *SQLPostRepository) Update(ctx context.Context, id string, fields models.PostFields) (models.Post, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind("UPDATE posts SET title = ?, summary = ?, content = ?, cover = ?, cover_id = ? WHERE id = ?"),
		fields.Title, fields.Summary, fields.Content, fields.Cover, fields.CoverID, id)
	if err != nil {
		return models.Post{}, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Post{}, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return models.Post{}, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

// DeleteByID removes a post.
func (r *SQLPostRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM posts WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(row scanner) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.Title, &p.Summary, &p.Content, &p.Cover, &p.CoverID, &p.CreatedAt, &p.Author.ID, &p.Author.Username)
	return p, err
}
