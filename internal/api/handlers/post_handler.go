package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/inkpost-be/internal/auth"
	"github.com/isdelr/inkpost-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// PostHandler handles HTTP requests for blog posts.
type PostHandler struct {
	service        services.PostServiceProvider
	tempDir        string
	maxUploadBytes int64
}

// NewPostHandler creates a new PostHandler. Cover uploads are spooled into
// tempDir and request bodies are capped at maxUploadBytes.
func NewPostHandler(service services.PostServiceProvider, tempDir string, maxUploadBytes int64) *PostHandler {
	return &PostHandler{service: service, tempDir: tempDir, maxUploadBytes: maxUploadBytes}
}

// List returns the most recent posts, newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListRecent(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get returns a single post with its author.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Create handles a multipart post submission with an optional cover file.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrInvalidToken)
		return
	}

	form, err := readPostForm(w, r, h.tempDir, h.maxUploadBytes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer h.release(r, form)

	post, err := h.service.Create(r.Context(), claims, form.Input, form.Upload())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// Update replaces a post's text and, when a file is sent, its cover. Ownership
// is checked before the body is read.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrInvalidToken)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := h.service.Authorize(r.Context(), claims, id); err != nil {
		writeError(w, r, err)
		return
	}

	form, err := readPostForm(w, r, h.tempDir, h.maxUploadBytes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer h.release(r, form)

	post, err := h.service.Update(r.Context(), claims, id, form.Input, form.Upload())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete removes a post owned by the caller.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrInvalidToken)
		return
	}

	if err := h.service.Delete(r.Context(), claims, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Post deleted")
}

func (h *PostHandler) release(r *http.Request, form *postForm) {
	if err := form.Close(); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to remove spooled upload")
	}
}
