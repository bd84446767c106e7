package repository

import (
	"context"
	"testing"

	"github.com/isdelr/inkpost-be/internal/database"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	return db
}
