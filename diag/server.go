// Package diag serves the local diagnostics endpoint: Prometheus metrics,
// a health probe and the current renderer state.
package diag

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/olablt/gio-basemaps/lifecycle"
	"github.com/olablt/gio-basemaps/logger"
	"github.com/olablt/gio-basemaps/metrics"
)

// StateSource is what /state reports.
type StateSource interface {
	Snapshot() lifecycle.Snapshot
}

// Handler returns the diagnostics mux wrapped in access logging.
func Handler(state StateSource, l *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("content-type", "application/json; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		if err := json.NewEncoder(w).Encode(state.Snapshot()); err != nil {
			l.Error("diag_state_encode_error", "err", err)
		}
	})
	return logger.AccessMiddleware(l)(mux)
}

// Server runs Handler on addr until Close.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

func NewServer(addr string, state StateSource, l *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{Addr: addr, Handler: Handler(state, l), ReadHeaderTimeout: 5 * time.Second},
		log: l,
	}
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		s.log.Info("diag_listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("diag_listen_error", "addr", s.srv.Addr, "err", err)
		}
	}()
}

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
