package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/inkpost-be/internal/api/handlers"
	"github.com/isdelr/inkpost-be/internal/auth"
	"github.com/isdelr/inkpost-be/internal/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Options carries the HTTP-level settings taken from config.
type Options struct {
	AllowedOrigins []string
	SecureCookies  bool
	UploadTempDir  string
	MaxUploadBytes int64
}

// Services bundles what the handlers call into.
type Services struct {
	Users  services.UserServiceProvider
	Posts  services.PostServiceProvider
	Events services.EventServiceProvider
	Tokens *auth.TokenService
	DB     handlers.Pinger
}

// NewRouter creates and configures a new Chi router.
func NewRouter(opts Options, svc Services) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(requestIDField)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(handlers.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(svc.Users, opts.SecureCookies)
	postHandler := handlers.NewPostHandler(svc.Posts, opts.UploadTempDir, opts.MaxUploadBytes)
	eventHandler := handlers.NewEventHandler(svc.Events)
	healthHandler := handlers.NewHealthHandler(svc.DB)

	// Public endpoints
	r.Get("/healthz", healthHandler.Check)
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)
	r.Post("/logout", userHandler.Logout)
	r.Get("/post", postHandler.List)
	r.Get("/post/{id}", postHandler.Get)

	// Session-protected endpoints
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(svc.Tokens))

		r.Get("/profile", userHandler.Profile)
		r.Post("/post", postHandler.Create)
		r.Put("/post/{id}", postHandler.Update)
		r.Delete("/post/{id}", postHandler.Delete)
		r.Get("/events", eventHandler.GetRecent)
	})

	return r
}

func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request handled")
}
