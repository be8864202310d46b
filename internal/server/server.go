package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emberworks/rekindle/internal/pipeline"
	"github.com/emberworks/rekindle/internal/store"
)

// Server is the rekindle HTTP status surface, consumed by the UI layer.
type Server struct {
	db      *store.DB
	runners []*pipeline.Runner
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server with the given database, runners, and version string.
func New(db *store.DB, runners []*pipeline.Runner, version string) *Server {
	s := &Server{
		db:      db,
		runners: runners,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/dormant", s.handleDormant)
		r.Post("/runs/ingest", s.handleIngest)
		r.Post("/runs/score", s.handleScore)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}
