package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"goeda/app"
	"goeda/internal"
	apperrors "goeda/internal/errors"
)

// Server exposes the analysis pipeline as a small JSON API
type Server struct {
	router  *chi.Mux
	service *app.AnalysisService
	log     *internal.Logger
	port    string
}

// Config holds API server configuration
type Config struct {
	Port        string
	MaxFileSize int64
}

// NewServer creates the API server
func NewServer(config Config, service *app.AnalysisService) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		log:     internal.NewDefaultLogger(),
		port:    config.Port,
	}

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if config.MaxFileSize > 0 {
		s.router.Use(middleware.RequestSize(config.MaxFileSize))
	}

	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/analyze", s.handleAnalyze)

	return s
}

// Start begins serving; blocks until the listener fails
func (s *Server) Start() error {
	s.log.Info("API server listening on :%s", s.port)
	return http.ListenAndServe(":"+s.port, s.router)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze accepts a multipart upload under the "dataset" field and
// responds with the full report as JSON.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("dataset")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing dataset file: "+err.Error())
		return
	}
	defer file.Close()

	result, err := s.service.AnalyzeStream(r.Context(), file, header.Filename)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case apperrors.IsMalformedInput(err):
			status = http.StatusUnprocessableEntity
		case apperrors.GetCode(err) == apperrors.CodeUnsupportedFormat:
			status = http.StatusUnsupportedMediaType
		}
		s.writeError(w, status, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, result.Report)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
