// Package api serves the daemon's local HTTP API: the current song, action
// submission and the live toast stream.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jfmyers9/toastify/internal/player"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Controller is the part of the daemon the API drives
type Controller interface {
	Current() *player.Song
	Submit(player.Action) bool
}

// Server represents the HTTP API server
type Server struct {
	router     *mux.Router
	handler    http.Handler
	controller Controller
	stream     http.Handler
	logger     zerolog.Logger
}

// NewServer creates a new API server. stream serves the websocket toast
// feed and may be nil.
func NewServer(controller Controller, stream http.Handler, logger zerolog.Logger) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		controller: controller,
		stream:     stream,
		logger:     logger.With().Str("component", "api").Logger(),
	}

	s.setupRoutes()
	s.handler = s.enableCORS(s.router)
	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/now", s.handleNow).Methods(http.MethodGet)
	api.HandleFunc("/actions", s.handleListActions).Methods(http.MethodGet)
	api.HandleFunc("/actions/{action}", s.handleAction).Methods(http.MethodPost)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if s.stream != nil {
		s.router.Handle("/ws", s.stream)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting API server")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// enableCORS answers cross-origin requests from local pages. Requests
// from any other origin may still read but cannot submit actions.
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		w.Header().Add("Vary", "Origin")

		if !LocalOrigin(r) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				s.logger.Warn().Str("origin", origin).Str("path", r.URL.Path).Msg("Rejected cross-origin request")
				http.Error(w, "origin not allowed", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleNow(w http.ResponseWriter, r *http.Request) {
	song := s.controller.Current()
	if song == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(player.Actions()))
	for _, a := range player.Actions() {
		names = append(names, a.String())
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["action"]

	action, err := player.ParseAction(name)
	if err != nil || action == player.ActionNone {
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	if !s.controller.Submit(action) {
		http.Error(w, "action queue full", http.StatusServiceUnavailable)
		return
	}

	s.logger.Debug().Stringer("action", action).Msg("Action submitted")
	writeJSON(w, http.StatusAccepted, map[string]string{"action": action.String()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
