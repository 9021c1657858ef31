package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/config"
	"github.com/dokzlo13/gsilight/internal/hue"
	"github.com/dokzlo13/gsilight/internal/kv"
)

// Credentials is the bridge address and application key stored by `gsilight pair`.
type Credentials struct {
	bucket *kv.SQLiteBucket
}

// NewCredentials creates a credential store on top of bucket.
func NewCredentials(bucket *kv.SQLiteBucket) *Credentials {
	return &Credentials{bucket: bucket}
}

// Load returns the stored bridge address and token; missing values are empty.
func (c *Credentials) Load(ctx context.Context) (bridge, token string, err error) {
	bridge, _, err = c.bucket.Get(ctx, kv.KeyBridge)
	if err != nil {
		return "", "", err
	}
	token, _, err = c.bucket.Get(ctx, kv.KeyToken)
	if err != nil {
		return "", "", err
	}
	return bridge, token, nil
}

// Save stores the bridge address and token.
func (c *Credentials) Save(ctx context.Context, bridge, token string) error {
	if err := c.bucket.Store(ctx, kv.KeyBridge, bridge); err != nil {
		return err
	}
	return c.bucket.Store(ctx, kv.KeyToken, token)
}

// resolveBridge picks the bridge address and token: configuration first, then
// stored credentials, then discovery for the address.
func resolveBridge(ctx context.Context, cfg *config.Config, creds *Credentials) (address, token string, err error) {
	address, token = cfg.Hue.Bridge, cfg.Hue.Token

	if address == "" || token == "" {
		storedBridge, storedToken, err := creds.Load(ctx)
		if err != nil {
			return "", "", fmt.Errorf("failed to load stored credentials: %w", err)
		}
		if address == "" {
			address = storedBridge
		}
		if token == "" {
			token = storedToken
		}
	}

	if address == "" {
		address, err = hue.Discover(ctx)
		if err != nil {
			return "", "", err
		}
	}

	if token == "" {
		return address, "", hue.ErrNotPaired
	}

	log.Debug().Str("bridge", address).Msg("Resolved Hue bridge")
	return address, token, nil
}
