package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/isdelr/inkpost-be/internal/auth"
	"github.com/isdelr/inkpost-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// UserHandler handles HTTP requests for registration and sessions.
type UserHandler struct {
	service       services.UserServiceProvider
	secureCookies bool
}

// NewUserHandler creates a new UserHandler. secureCookies sets the Secure
// flag on the session cookie and should be true in production.
func NewUserHandler(service services.UserServiceProvider, secureCookies bool) *UserHandler {
	return &UserHandler{service: service, secureCookies: secureCookies}
}

// CredentialsPayload is the body of register and login requests.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(r *http.Request) (CredentialsPayload, error) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}
	return payload, nil
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and sets the session cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeCredentials(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, token, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, time.Now().Add(auth.TokenTTL)))
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Profile reports the identity carried by the session token.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrInvalidToken)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"loggedIn": true,
		"id":       claims.UserID,
		"username": claims.Username,
	})
}

// Logout clears the session cookie. It succeeds whether or not a session exists.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := h.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	writeMessage(w, http.StatusOK, "Logged out")
}

func (h *UserHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	}
}
