// Package server exposes the mixer handle over a small HTTP API: status and
// control endpoints plus an SSE stream for change notifications.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/user/volumed/internal/config"
	"github.com/user/volumed/internal/sse"
)

// Mixer is the subset of the mixer handle the HTTP layer drives. Defined
// here so tests can substitute a fake without ALSA hardware.
type Mixer interface {
	Device() string
	VolumeControlNames() []string
	HasPlaybackSwitch() bool
	SetVolume(dB float64)
	SetMute(muted bool)
}

// Server handles HTTP requests against one mixer handle. The handle has a
// single logical owner, so every mixer call goes through mu.
type Server struct {
	config *config.Config
	hub    *sse.Hub
	mixer  Mixer
	mux    *http.ServeMux
	server *http.Server

	mu       sync.Mutex
	volumeDB float64
	muted    bool
}

// New creates the HTTP server for the given mixer handle.
func New(cfg *config.Config, hub *sse.Hub, mixer Mixer) *Server {
	s := &Server{
		config: cfg,
		hub:    hub,
		mixer:  mixer,
		mux:    http.NewServeMux(),
	}

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.loggingMiddleware(s.corsMiddleware(s.mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	// "/{$}" matches the root only; a bare "/" would swallow wrong-method
	// requests to the other routes and turn their 405s into 404s.
	s.mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("volumed"))
	})

	s.mux.HandleFunc("GET /status", s.StatusHandler)
	s.mux.HandleFunc("POST /volume", s.VolumeHandler)
	s.mux.HandleFunc("POST /mute", s.MuteHandler)
	s.mux.Handle("/events", s.hub)
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	log.Info("http server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs all HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// corsMiddleware allows cross-origin use of the control API.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
