package hue

import (
	"context"
	"fmt"
	"sort"

	"github.com/amimof/huego"
	"github.com/rs/zerolog/log"
)

// Discover finds a bridge on the local network and returns its address.
func Discover(ctx context.Context) (string, error) {
	bridge, err := huego.DiscoverContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to discover Hue bridge: %w", err)
	}
	log.Info().Str("bridge", bridge.Host).Str("id", bridge.ID).Msg("Discovered Hue bridge")
	return bridge.Host, nil
}

// Pair registers deviceType with the bridge and returns the new application key.
// The link button on the bridge must be pressed shortly before.
func Pair(ctx context.Context, address, deviceType string) (string, error) {
	token, err := huego.New(address, "").CreateUserContext(ctx, deviceType)
	if err != nil {
		return "", fmt.Errorf("failed to pair with Hue bridge %s (was the link button pressed?): %w", address, err)
	}
	return token, nil
}

// ListLights returns every light on the bridge, ordered by ID.
func ListLights(ctx context.Context, address, token string) ([]huego.Light, error) {
	lights, err := huego.New(address, token).GetLightsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lights: %w", err)
	}
	sort.Slice(lights, func(i, j int) bool {
		return lights[i].ID < lights[j].ID
	})
	return lights, nil
}
