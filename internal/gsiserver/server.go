// Package gsiserver receives Game State Integration posts from the game client
// and queues the parsed snapshots for the session controller.
package gsiserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/gsi"
)

// ErrQueueFull is returned by Enqueue when the snapshot queue has no room.
var ErrQueueFull = errors.New("snapshot queue full")

// Options configures a Server.
type Options struct {
	AuthToken string       // Required auth.token, empty = accept all
	MaxBody   int64        // Maximum request body in bytes
	QueueSize int          // Snapshots buffered for the consumer
	Ready     func() bool  // Reported by /ready, nil = always ready
	Feed      http.Handler // Mounted at /events when set
}

// Server is an HTTP server that receives game state and queues snapshots.
type Server struct {
	addr       string
	opts       Options
	queue      chan gsi.Snapshot
	httpServer *http.Server
	dropped    atomic.Int64
}

// NewServer creates a new GSI server listening on addr.
func NewServer(addr string, opts Options) *Server {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = 1 << 20
	}
	return &Server{
		addr:  addr,
		opts:  opts,
		queue: make(chan gsi.Snapshot, opts.QueueSize),
	}
}

// Snapshots returns the queue of accepted snapshots in arrival order.
func (s *Server) Snapshots() <-chan gsi.Snapshot {
	return s.queue
}

// Dropped returns how many snapshots were discarded because the queue was full.
func (s *Server) Dropped() int64 {
	return s.dropped.Load()
}

// Enqueue adds snap to the queue without blocking.
func (s *Server) Enqueue(snap gsi.Snapshot) error {
	select {
	case s.queue <- snap:
		return nil
	default:
		s.dropped.Add(1)
		return ErrQueueFull
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/", s.handleState)
	r.Post("/gsi", s.handleState)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.opts.Feed != nil {
		r.Method(http.MethodGet, "/events", s.opts.Feed)
	}

	return r
}

// Run starts the server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("Starting GSI server")

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("GSI server shutdown error")
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(w, http.StatusRequestEntityTooLarge, "too_large")
			return
		}
		log.Error().Err(err).Msg("Failed to read GSI request body")
		writeStatus(w, http.StatusBadRequest, "unreadable")
		return
	}

	snap, err := gsi.Parse(body)
	if err != nil {
		log.Warn().Err(err).Int("body_len", len(body)).Msg("Rejected invalid game state")
		writeStatus(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if s.opts.AuthToken != "" && snap.AuthToken() != s.opts.AuthToken {
		log.Warn().Str("remote", r.RemoteAddr).Msg("Rejected game state with wrong auth token")
		writeStatus(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := s.Enqueue(snap); err != nil {
		log.Warn().
			Err(err).
			Int("queue_size", cap(s.queue)).
			Int64("dropped", s.Dropped()).
			Msg("Dropping game state, effects are falling behind")
		writeStatus(w, http.StatusOK, "dropped")
		return
	}

	log.Trace().Int("body_len", len(body)).Str("match", snap.MatchID()).Msg("Received game state")
	writeStatus(w, http.StatusOK, "ok")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, "healthy")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil && !s.opts.Ready() {
		writeStatus(w, http.StatusServiceUnavailable, "not_ready")
		return
	}
	writeStatus(w, http.StatusOK, "ready")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"status":"` + status + `"}`))
}
