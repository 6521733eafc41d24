package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sstrack/sstrack/internal/utils"
	"github.com/sstrack/sstrack/pkg/command"
	"github.com/sstrack/sstrack/pkg/metrics"
	"github.com/sstrack/sstrack/pkg/player"
	"github.com/sstrack/sstrack/pkg/storage"
	"github.com/sstrack/sstrack/pkg/tracking"
)

// PlayerStore is the read side of *storage.DB served by the API.
type PlayerStore interface {
	GetPlayer(ctx context.Context, id string) (player.Snapshot, error)
	ListPlayers(ctx context.Context) ([]storage.PlayerRecord, error)
	GetStats(ctx context.Context) (storage.Stats, error)
}

type Server struct {
	DB         PlayerStore
	Tracker    *tracking.Tracker
	Dispatcher *command.Dispatcher
	Metrics    *metrics.Manager
	Username   string
	Password   string
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /{$}", s.basicAuth(s.handleStatusPage))
	mux.HandleFunc("GET /api/stats", s.basicAuth(s.handleStats))
	mux.HandleFunc("POST /api/commands", s.basicAuth(s.handleCommand))
	mux.HandleFunc("GET /api/sessions", s.basicAuth(s.handleSessions))
	mux.HandleFunc("GET /api/sessions/{context}", s.basicAuth(s.handleSession))
	mux.HandleFunc("DELETE /api/sessions/{context}", s.basicAuth(s.handleStopSession))
	mux.HandleFunc("GET /api/players", s.basicAuth(s.handlePlayers))
	mux.HandleFunc("GET /api/players/{id}", s.basicAuth(s.handlePlayer))
	mux.Handle("GET /metrics", s.basicAuth(s.Metrics.Handler().ServeHTTP))

	return mux
}

// Run serves on addr until ctx is cancelled, then drains for up to 10s.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Log.Infof("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
