// Package api assembles the HTTP surface: middleware stack and routes.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/nxsg/chat-api/internal/auth"
	"github.com/nxsg/chat-api/internal/chats"
	"github.com/nxsg/chat-api/internal/messages"
	"github.com/nxsg/chat-api/internal/metrics"
	"github.com/nxsg/chat-api/internal/middleware"
	"github.com/nxsg/chat-api/internal/users"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Users    *users.Service
	Chats    *chats.Service
	Messages *messages.Service
	Tokens   middleware.TokenParser
	Denylist auth.Denylist // optional
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger

	AllowedOrigins []string
}

// NewRouter returns the API handler.
func NewRouter(d Deps) http.Handler {
	userHandler := users.NewHandler(d.Users)
	chatHandler := chats.NewHandler(d.Chats)
	messageHandler := messages.NewHandler(d.Messages)
	requireToken := middleware.RequireToken(d.Tokens, d.Denylist)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(d.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", auth.TokenHeader, messages.EmailHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	// User routes: registration and login are public
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/newUser", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(requireToken)
			r.Get("/", userHandler.List)
			r.Get("/{email}", userHandler.Get)
			r.Post("/logout", userHandler.Logout)
		})
	})

	// Chat and message routes (protected)
	r.Route("/api/chats", func(r chi.Router) {
		r.Use(requireToken)
		r.Get("/", chatHandler.List)
		r.Post("/newChat", chatHandler.Create)
		r.Get("/invite/{chatName}", chatHandler.InviteLink)
		r.Post("/invite/{chatName}", chatHandler.AddUser)
		r.Get("/messages/{chatName}", messageHandler.List)
		r.Post("/messages/{chatName}", messageHandler.Post)
		r.Get("/{chatName}", chatHandler.Get)
	})

	return r
}
