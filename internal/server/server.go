// Package server provides the HTTP server for the try-on application.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/gayaku/internal/app"
	"github.com/ayusman/gayaku/internal/server/api"
	"github.com/ayusman/gayaku/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir   string
	Store       *store.Store
	App         *app.App
	Recommender api.Recommender
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	frames *FramesHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		var onChange func() error
		if s.config.App != nil {
			onChange = s.config.App.ReloadCatalog
		}
		assets := api.NewAssetHandler(s.config.Store, onChange)
		s.mux.Handle("/api/assets", assets)
		s.mux.Handle("/api/assets/", assets)
	}

	if a := s.config.App; a != nil {
		sessionHandler := api.NewSessionHandler(a)
		s.mux.Handle("/api/session", sessionHandler)
		s.mux.Handle("/api/session/", sessionHandler)

		s.frames = NewFramesHandler(a, a.Session().Resize)
		s.mux.Handle("/api/frames", s.frames)
		s.mux.Handle("/api/stream", NewStreamHandler(a))
		s.mux.Handle("/api/snapshot", NewSnapshotHandler(a))

		if s.config.Recommender != nil {
			s.mux.Handle("/api/recommend", api.NewRecommendHandler(s.config.Recommender, a, a))
		}
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		response["running"] = s.config.App.Running()
		response["tracking"] = s.config.App.Session().Status()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Close disconnects websocket clients.
func (s *Server) Close() {
	if s.frames != nil {
		s.frames.Close()
	}
}
