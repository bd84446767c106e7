package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/inkpost-be/internal/database"
	"github.com/isdelr/inkpost-be/internal/models"
)

// UserRepository is the credential store.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, username, passwordHash string) (models.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// SQLUserRepository implements UserRepository on a SQL database.
type SQLUserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new SQLUserRepository.
func NewUserRepository(db *database.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

const userColumns = "id, username, password_hash, created_at, last_login"

// FindByUsername retrieves a single user by username, including the password hash.
func (r *SQLUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT "+userColumns+" FROM users WHERE username = ?"), username)
	return scanUser(row)
}

// FindByID retrieves a single user by id.
func (r *SQLUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	return scanUser(row)
}

// Create inserts a user. Uniqueness of the username is left to the UNIQUE
// constraint so that concurrent registrations cannot both succeed.
func (r *SQLUserRepository) Create(ctx context.Context, username, passwordHash string) (models.User, error) {
	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now(),
	}

	_, err := r.db.ExecContext(ctx,
		r.db.Rebind("INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)"),
		user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.User{}, fmt.Errorf("user %q: %w", username, ErrDuplicate)
		}
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// TouchLastLogin records a successful login.
func (r *SQLUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE users SET last_login = ? WHERE id = ?"), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row scanner) (models.User, error) {
	var (
		user      models.User
		lastLogin sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLogin = &t
	}
	return user, nil
}
