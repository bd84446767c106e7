package services

import (
	"context"
	"io"
	"testing"

	"github.com/isdelr/inkpost-be/internal/auth"
	"github.com/isdelr/inkpost-be/internal/database"
	"github.com/isdelr/inkpost-be/internal/media"
	"github.com/isdelr/inkpost-be/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMedia struct {
	mock.Mock
}

func (m *mockMedia) Upload(ctx context.Context, body io.ReadSeeker, contentType string) (media.Object, error) {
	args := m.Called(ctx, body, contentType)
	return args.Get(0).(media.Object), args.Error(1)
}

func (m *mockMedia) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type fixture struct {
	db      *database.DB
	users   *repository.SQLUserRepository
	posts   *repository.SQLPostRepository
	events  *EventService
	media   *mockMedia
	tokens  *auth.TokenService
	userSvc *UserService
	postSvc *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	f := &fixture{
		db:     db,
		users:  repository.NewUserRepository(db),
		posts:  repository.NewPostRepository(db),
		events: NewEventService(db),
		media:  &mockMedia{},
		tokens: auth.NewTokenService("test-secret"),
	}
	f.userSvc = NewUserService(f.users, f.tokens)
	f.postSvc = NewPostService(f.posts, f.media, f.events)
	return f
}

// claimsFor registers a user straight through the repository and returns
// claims equivalent to a verified session token.
func (f *fixture) claimsFor(t *testing.T, username string) *auth.Claims {
	t.Helper()
	u, err := f.users.Create(context.Background(), username, "hash")
	require.NoError(t, err)
	return &auth.Claims{UserID: u.ID, Username: u.Username}
}
