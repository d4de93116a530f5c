package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vibehub/backend/internal/auth"
	"github.com/vibehub/backend/internal/observability"
)

// Routes bundles everything the HTTP router mounts.
type Routes struct {
	CorsOrigins    []string
	RequestTimeout time.Duration
	Identity       auth.Identity

	// Health defaults to a handler with no dependency checks
	Health *HealthHandler

	Conversations *ConversationHandler
	Messages      *MessageHandler
	Stories       *StoryHandler
	Media         *MediaHandler
	Verification  *VerificationHandler

	// WebSocket serves GET /ws
	WebSocket http.HandlerFunc
}

// NewRouter builds the chi router with the middleware stack and all routes.
func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()

	health := rt.Health
	if health == nil {
		health = NewHealthHandler(nil)
	}

	// Middleware stack
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(observability.RequestID)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", health.Check)

	if rt.WebSocket != nil {
		r.Get("/ws", rt.WebSocket)
	}

	r.Route("/api", func(r chi.Router) {
		// public
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(rt.RequestTimeout))
			r.Post("/auth/codes", rt.Verification.RequestCode)
			r.Post("/auth/codes/verify", rt.Verification.VerifyCode)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(rt.Identity))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(rt.RequestTimeout))
				r.Post("/conversations", rt.Conversations.Create)
				r.Get("/conversations/{id}", rt.Conversations.Get)
				r.Post("/conversations/{id}/messages", rt.Messages.Send)
				r.Get("/users/{userId}/conversations", rt.Conversations.ListForUser)
				r.Post("/messages/share-post", rt.Messages.SharePost)
				r.Get("/stories", rt.Stories.List)
			})

			// uploads are bounded by the storage client timeout instead
			r.Post("/stories", rt.Stories.Create)
			r.Post("/media", rt.Media.Upload)
		})
	})

	return r
}
