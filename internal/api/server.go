package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/chatview/internal/grouping"
	"github.com/MikeSquared-Agency/chatview/internal/ingest"
	"github.com/MikeSquared-Agency/chatview/internal/store"
)

// Config holds the HTTP-facing settings.
type Config struct {
	Port           int
	APIToken       string // bearer token for /api/v1/transcripts; empty disables auth
	PageSize       int
	SelfName       string
	MaxUploadBytes int64
}

type Server struct {
	router *chi.Mux
	http   *http.Server
	cfg    Config
	repo   store.Repository
	ingest *ingest.Service
}

func NewServer(cfg Config, repo store.Repository, svc *ingest.Service) *Server {
	if cfg.PageSize <= 0 {
		cfg.PageSize = grouping.DefaultPageSize
	}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		http:   &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: router},
		cfg:    cfg,
		repo:   repo,
		ingest: svc,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/chatview/status", s.status)

	router.Route("/api/v1/transcripts", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(cfg.APIToken))
		r.Post("/", s.uploadTranscript)
		r.Get("/", s.listTranscripts)
		r.Get("/{id}/messages", s.transcriptMessages)
	})

	return s
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called, then returns nil.
func (s *Server) Start() error {
	slog.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":  "chatview",
		"status": "ready",
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
