package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/config"
	"github.com/dokzlo13/gsilight/internal/effects"
	"github.com/dokzlo13/gsilight/internal/hue"
)

// HueService wraps the bridge driver and the effect player built on it.
type HueService struct {
	cfg *config.Config

	Client *hue.Client
	Driver *hue.Driver
	Player *effects.Player
}

// NewHueService resolves the bridge and creates a driver, not yet connected.
func NewHueService(ctx context.Context, cfg *config.Config, creds *Credentials) (*HueService, error) {
	address, token, err := resolveBridge(ctx, cfg, creds)
	if err != nil {
		return nil, err
	}

	client := hue.NewClient(address, token, cfg.Hue.Timeout.Duration())
	driver := hue.NewDriver(client, cfg.Hue.Lights, cfg.Hue.RateLimitRPS)

	return &HueService{
		cfg:    cfg,
		Client: client,
		Driver: driver,
		Player: effects.NewPlayer(driver, effects.Sleep),
	}, nil
}

// Start connects to the Hue bridge.
func (s *HueService) Start(ctx context.Context) error {
	return s.Driver.Connect(ctx)
}

// StartBackground keeps the bridge connected.
// onFatalError is called if the bridge stops accepting the application key.
func (s *HueService) StartBackground(ctx context.Context, onFatalError func(error)) {
	retry := hue.RetryConfig{
		MinBackoff: s.cfg.Hue.MinRetryBackoff.Duration(),
		MaxBackoff: s.cfg.Hue.MaxRetryBackoff.Duration(),
		Multiplier: s.cfg.Hue.RetryMultiplier,
	}

	go func() {
		if err := s.Driver.Run(ctx, retry); err != nil {
			if errors.Is(err, hue.ErrNotPaired) && onFatalError != nil {
				onFatalError(err)
				return
			}
			log.Error().Err(err).Msg("Hue connection loop error")
		}
	}()
}

// Reset returns the lights to warm white.
func (s *HueService) Reset(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info().Msg("Resetting lights")
	s.Player.Reset(ctx)
}

// Close releases all resources.
func (s *HueService) Close() {
	if s.Driver != nil {
		s.Driver.Close()
	}
}
