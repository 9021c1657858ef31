package app

import (
	"context"

	"github.com/dokzlo13/gsilight/internal/config"
	"github.com/dokzlo13/gsilight/internal/db"
	"github.com/dokzlo13/gsilight/internal/gsiserver"
	"github.com/dokzlo13/gsilight/internal/kv"
	"github.com/dokzlo13/gsilight/internal/mapper"
	"github.com/dokzlo13/gsilight/internal/session"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB          *db.DB
	Credentials *Credentials

	// High-level services
	Hue    *HueService
	Script *ScriptService
	Events *EventService
	GSI    *GSIService

	started bool
}

// NewServices creates all services with proper dependency injection.
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	// Initialize database
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = database
	s.Credentials = NewCredentials(kv.NewSQLiteBucket(database.DB, kv.BucketHue))

	// Initialize Hue service (bridge resolution, driver, effect player)
	s.Hue, err = NewHueService(ctx, cfg, s.Credentials)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Initialize optional Lua overrides
	s.Script, err = NewScriptService(cfg, s.Hue.Player)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Initialize event observers
	s.Events = NewEventService(cfg)

	// Initialize session controller and GSI listener
	effectMapper := mapper.New(s.Hue.Player, s.Script.Overrides())
	controller := session.NewController(effectMapper, s.Events.Bus)

	opts := gsiserver.Options{Ready: s.Hue.Driver.IsConnected}
	if s.Events.Feed != nil {
		opts.Feed = s.Events.Feed
	}
	s.GSI = NewGSIService(cfg, opts, controller)

	return s, nil
}

// Start starts all services in the correct order.
// The onFatalError callback is called when a fatal error occurs (e.g., the bridge revoked the key).
func (s *Services) Start(ctx context.Context, onFatalError func(error)) error {
	// Connect to Hue bridge
	if err := s.Hue.Start(ctx); err != nil {
		return err
	}

	// Start all background services
	s.Events.Start()
	s.Hue.StartBackground(ctx, onFatalError)
	s.GSI.Start(ctx, onFatalError)
	s.started = true

	return nil
}

// Stop gracefully stops all services. The caller must cancel the context
// passed to Start first.
func (s *Services) Stop() error {
	if s.started {
		// The session goroutine is the only user of the lights; wait for it
		// before resetting them.
		s.GSI.Wait()
		s.Hue.Reset(s.cfg.ShutdownTimeout.Duration())
	}
	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Events != nil {
		s.Events.Close()
	}
	if s.Script != nil {
		s.Script.Close()
	}
	if s.Hue != nil {
		s.Hue.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
