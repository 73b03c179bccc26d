package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/DesireeAI/odonto/internal/auth"
	"github.com/DesireeAI/odonto/internal/database"
	"github.com/DesireeAI/odonto/internal/handlers"
	mw "github.com/DesireeAI/odonto/internal/middleware"
	"github.com/DesireeAI/odonto/internal/persona"
	"github.com/DesireeAI/odonto/internal/thread"
	ws "github.com/DesireeAI/odonto/internal/websocket"
)

type Server struct {
	Router *chi.Mux
	DB     *database.DB
	Auth   *auth.Service
	WSHub  *ws.Hub
}

type Config struct {
	DB        *database.DB
	Auth      *auth.Service
	Registry  *thread.Registry
	Catalog   *persona.Catalog
	Processor handlers.Processor
	Port      int
}

func New(cfg Config) *Server {
	s := &Server{
		Router: chi.NewRouter(),
		DB:     cfg.DB,
		Auth:   cfg.Auth,
		WSHub:  ws.NewHub(cfg.Auth, cfg.Port),
	}

	s.setupMiddleware()
	s.setupRoutes(cfg)

	return s
}

func (s *Server) setupMiddleware() {
	s.Router.Use(chiMiddleware.RealIP)
	s.Router.Use(mw.RequestID)
	s.Router.Use(mw.SecurityHeaders)
	s.Router.Use(mw.Logger)
	s.Router.Use(mw.CORS)
	s.Router.Use(chiMiddleware.Recoverer)
}

func (s *Server) setupRoutes(cfg Config) {
	sessionHandler := handlers.NewSessionHandler(s.Auth, s.DB)
	chatHandler := handlers.NewChatHandler(cfg.Processor, cfg.Registry, s.Auth, s.DB)
	personaHandler := handlers.NewPersonaHandler(cfg.Catalog)
	systemHandler := handlers.NewSystemHandler(cfg.Registry, cfg.Catalog)

	s.Router.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.With(mw.RateLimit(10, time.Minute)).Post("/session", sessionHandler.Create)

		// Public health check (used by reception kiosk polling)
		r.Get("/system/health", systemHandler.Health)

		// WebSocket (auth handled internally)
		r.Get("/ws", s.WSHub.HandleWS)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(s.Auth))

			r.Route("/chat", func(r chi.Router) {
				r.With(mw.RateLimit(30, time.Minute)).Post("/", chatHandler.Send)
				r.Get("/history", chatHandler.History)
				r.Post("/clear", chatHandler.Clear)
			})

			r.Get("/personas", personaHandler.List)
		})
	})

	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})
}
