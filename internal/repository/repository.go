// Package repository persists users and posts through database/sql. Queries are
// written with '?' placeholders and rebound for the active dialect.
package repository

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// now returns the storage timestamp for new rows. PostgreSQL keeps microseconds,
// so values are truncated to survive a round trip unchanged.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
