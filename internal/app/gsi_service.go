package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/config"
	"github.com/dokzlo13/gsilight/internal/gsiserver"
	"github.com/dokzlo13/gsilight/internal/session"
)

// GSIService wraps the game state listener and the session goroutine that consumes it.
type GSIService struct {
	cfg        *config.Config
	Server     *gsiserver.Server
	Controller *session.Controller

	done chan struct{}
}

// NewGSIService creates a new GSIService.
func NewGSIService(cfg *config.Config, opts gsiserver.Options, controller *session.Controller) *GSIService {
	opts.AuthToken = cfg.GSI.AuthToken
	opts.MaxBody = int64(cfg.GSI.MaxBody)
	opts.QueueSize = cfg.GSI.QueueSize

	return &GSIService{
		cfg:        cfg,
		Server:     gsiserver.NewServer(cfg.GSI.Addr(), opts),
		Controller: controller,
		done:       make(chan struct{}),
	}
}

// Start runs the session goroutine and the HTTP server.
// onFatalError is called if the server cannot listen.
func (s *GSIService) Start(ctx context.Context, onFatalError func(error)) {
	go func() {
		defer close(s.done)
		s.Controller.Run(ctx, s.Server.Snapshots())
	}()

	go func() {
		if err := s.Server.Run(ctx, s.cfg.ShutdownTimeout.Duration()); err != nil {
			log.Error().Err(err).Msg("GSI server error")
			if onFatalError != nil {
				onFatalError(err)
			}
		}
	}()
}

// Wait blocks until the session goroutine has finished its current effect and exited.
func (s *GSIService) Wait() {
	<-s.done
}
