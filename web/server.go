// Package web serves the upload UI's JSON API: account registration and
// login, timesheet upload and processing, run history, and report downloads.
package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"breakaudit/config"
	"breakaudit/storage"
)

type Server struct {
	store    *storage.SQLiteStore
	cfg      config.Config
	logger   *zap.Logger
	sessions *sessionStore
	router   chi.Router
}

func NewServer(store *storage.SQLiteStore, cfg config.Config, logger *zap.Logger) *Server {
	server := &Server{
		store:    store,
		cfg:      cfg,
		logger:   logger,
		sessions: newSessionStore(time.Duration(cfg.Server.SessionTimeoutHours) * time.Hour),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(server.logRequests)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Post("/api/register", server.handleRegister)
	router.Post("/api/login", server.handleLogin)
	router.Post("/api/logout", server.handleLogout)
	router.Get("/api/template", server.handleTemplate)

	router.Group(func(r chi.Router) {
		r.Use(server.requireSession)
		r.Post("/api/upload", server.handleUpload)
		r.Get("/api/uploads", server.handleListUploads)
		r.Get("/api/uploads/{id}", server.handleGetUpload)
		r.Get("/api/download/{view}/{id}", server.handleDownload)
	})

	server.router = router
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
