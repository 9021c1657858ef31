package app

import (
	"context"
	"fmt"

	"github.com/amimof/huego"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/config"
	"github.com/dokzlo13/gsilight/internal/db"
	"github.com/dokzlo13/gsilight/internal/hue"
	"github.com/dokzlo13/gsilight/internal/kv"
)

func openCredentials(cfg *config.Config) (*db.DB, *Credentials, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return database, NewCredentials(kv.NewSQLiteBucket(database.DB, kv.BucketHue)), nil
}

// Pair registers gsilight with the bridge and stores the new application key.
// It returns the bridge address that was paired.
func Pair(ctx context.Context, cfg *config.Config) (string, error) {
	database, creds, err := openCredentials(cfg)
	if err != nil {
		return "", err
	}
	defer database.Close()

	address := cfg.Hue.Bridge
	if address == "" {
		if address, _, err = creds.Load(ctx); err != nil {
			return "", err
		}
	}
	if address == "" {
		if address, err = hue.Discover(ctx); err != nil {
			return "", err
		}
	}

	token, err := hue.Pair(ctx, address, cfg.Hue.DeviceType)
	if err != nil {
		return "", err
	}
	if err := creds.Save(ctx, address, token); err != nil {
		return "", fmt.Errorf("paired but failed to store the key: %w", err)
	}

	log.Info().Str("bridge", address).Str("device_type", cfg.Hue.DeviceType).Msg("Paired with Hue bridge")
	return address, nil
}

// ListLights returns every light on the resolved bridge.
func ListLights(ctx context.Context, cfg *config.Config) ([]huego.Light, error) {
	database, creds, err := openCredentials(cfg)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	address, token, err := resolveBridge(ctx, cfg, creds)
	if err != nil {
		return nil, err
	}
	return hue.ListLights(ctx, address, token)
}
