package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/isdelr/inkpost-be/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// fakeS3 answers path-style PutObject and DeleteObject calls.
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
		return
	}

	switch r.Method {
	case http.MethodPut:
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStore(t *testing.T, fake *fakeS3) *S3Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), config.S3Config{
		Endpoint:     srv.URL,
		Region:       "us-east-1",
		Bucket:       "inkpost",
		AccessKey:    "test",
		SecretKey:    "test-secret",
		PublicURL:    "https://cdn.example/inkpost/",
		Prefix:       "/covers/",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	return store
}

func TestS3Store_Upload(t *testing.T) {
	fake := &fakeS3{}
	store := newTestStore(t, fake)

	obj, err := store.Upload(context.Background(), bytes.NewReader([]byte("png-bytes")), "image/png")
	require.NoError(t, err)

	assert.NotEmpty(t, obj.ID)
	assert.Equal(t, "https://cdn.example/inkpost/covers/"+obj.ID, obj.URL)
	assert.Equal(t, obj.ID, IDFromLocator(obj.URL))

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/inkpost/covers/"+obj.ID, req.Path)
	assert.Equal(t, "image/png", req.ContentType)
	assert.Equal(t, []byte("png-bytes"), req.Body)
}

func TestS3Store_UploadFailureIsNotRetried(t *testing.T) {
	fake := &fakeS3{status: http.StatusForbidden}
	store := newTestStore(t, fake)

	_, err := store.Upload(context.Background(), strings.NewReader("x"), "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Len(t, fake.requests, 1)
}

func TestS3Store_Delete(t *testing.T) {
	fake := &fakeS3{}
	store := newTestStore(t, fake)

	require.NoError(t, store.Delete(context.Background(), "abc"))
	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodDelete, fake.requests[0].Method)
	assert.Equal(t, "/inkpost/covers/abc", fake.requests[0].Path)

	assert.Error(t, store.Delete(context.Background(), ""))
	assert.Len(t, fake.requests, 1)
}

func TestS3Store_DeleteFailure(t *testing.T) {
	fake := &fakeS3{status: http.StatusForbidden}
	store := newTestStore(t, fake)

	err := store.Delete(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUploadFailed)
}

func TestNewS3Store_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Store(context.Background(), config.S3Config{Bucket: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config")
}

func TestIDFromLocator(t *testing.T) {
	tests := map[string]string{
		"https://res.example.com/demo/image/upload/v1712/blog/abc123.jpg": "abc123",
		"https://cdn.example/inkpost/covers/0c5e1e7a-1b2c":                "0c5e1e7a-1b2c",
		"https://cdn.example/inkpost/covers/photo.tar.gz":                 "photo.tar",
		"https://cdn.example/inkpost/covers/abc/":                         "abc",
		"covers/plain.png":                                                "plain",
		"":                                                                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, IDFromLocator(in), "locator %q", in)
	}
}
