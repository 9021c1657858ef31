package hue

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dokzlo13/gsilight/internal/effects"
)

// RetryConfig contains configuration for bridge reconnection.
type RetryConfig struct {
	MinBackoff time.Duration // Minimum backoff between reconnects
	MaxBackoff time.Duration // Maximum backoff between reconnects
	Multiplier float64       // Backoff multiplier
}

// DefaultRetryConfig returns sensible defaults for reconnection.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MinBackoff: 1 * time.Second,
		MaxBackoff: 2 * time.Minute,
		Multiplier: 2.0,
	}
}

// Driver controls a set of Hue lights. It implements effects.Device.
type Driver struct {
	client  *Client
	filter  []string
	limiter *rate.Limiter

	mu        sync.RWMutex
	lights    []string
	connected atomic.Bool
	lost      chan struct{}
}

var _ effects.Device = (*Driver)(nil)

// NewDriver creates a driver for the lights in filter, or all lights when filter is empty.
func NewDriver(client *Client, filter []string, rateLimitRPS float64) *Driver {
	if rateLimitRPS == 0 {
		rateLimitRPS = 10.0
	}
	burst := int(rateLimitRPS)
	if burst < 1 {
		burst = 1
	}

	return &Driver{
		client:  client,
		filter:  filter,
		limiter: rate.NewLimiter(rate.Limit(rateLimitRPS), burst),
		lost:    make(chan struct{}, 1),
	}
}

// Connect fetches the light list from the bridge and marks the driver connected.
func (d *Driver) Connect(ctx context.Context) error {
	if !d.client.HasToken() {
		return ErrNotPaired
	}

	all, err := d.client.GetLights(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Unauthorized() {
			return fmt.Errorf("%w: %v", ErrNotPaired, err)
		}
		return fmt.Errorf("failed to connect to Hue bridge %s: %w", d.client.Address(), err)
	}

	ids := d.selectLights(all)
	if len(ids) == 0 {
		log.Warn().Str("bridge", d.client.Address()).Msg("No controllable lights found")
	}

	d.mu.Lock()
	d.lights = ids
	d.mu.Unlock()
	d.connected.Store(true)

	log.Info().
		Str("bridge", d.client.Address()).
		Strs("lights", ids).
		Msg("Connected to Hue bridge")
	return nil
}

func (d *Driver) selectLights(all []Light) []string {
	ids := make([]string, 0, len(all))
	for _, l := range all {
		if len(d.filter) == 0 || slices.Contains(d.filter, l.ID) {
			ids = append(ids, l.ID)
		}
	}
	for _, want := range d.filter {
		if !slices.Contains(ids, want) {
			log.Warn().Str("light", want).Msg("Configured light not found on bridge")
		}
	}
	return ids
}

// ListDevices returns the IDs of the controlled lights.
func (d *Driver) ListDevices() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.lights)
}

// IsConnected reports whether the last connection attempt succeeded and no
// batch has since failed entirely.
func (d *Driver) IsConnected() bool {
	return d.connected.Load()
}

// SetState sends state to every light in ids in parallel and waits for all of them.
func (d *Driver) SetState(ctx context.Context, ids []string, state effects.State) {
	body := toLightState(state)

	var wg sync.WaitGroup
	var unreachable atomic.Int32
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			if err := d.limiter.Wait(ctx); err != nil {
				return
			}
			if err := d.client.SetLightState(ctx, id, body); err != nil {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					unreachable.Add(1)
				}
				log.Warn().Err(err).Str("light", id).Msg("Failed to set light state")
			}
		}(id)
	}
	wg.Wait()

	if len(ids) > 0 && int(unreachable.Load()) == len(ids) && ctx.Err() == nil {
		d.markLost()
	}
}

func (d *Driver) markLost() {
	if !d.connected.CompareAndSwap(true, false) {
		return
	}
	log.Warn().Str("bridge", d.client.Address()).Msg("Lost connection to Hue bridge")
	select {
	case d.lost <- struct{}{}:
	default:
	}
}

// Run keeps the driver connected until ctx is done, reconnecting with
// exponential backoff. It returns ErrNotPaired if the bridge rejects the key.
func (d *Driver) Run(ctx context.Context, config RetryConfig) error {
	retryCount := 0
	currentBackoff := config.MinBackoff

	for {
		if d.IsConnected() {
			select {
			case <-ctx.Done():
				return nil
			case <-d.lost:
			}
			continue
		}

		err := d.Connect(ctx)
		if err == nil {
			retryCount = 0
			currentBackoff = config.MinBackoff
			continue
		}
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrNotPaired) {
			return err
		}

		retryCount++
		log.Warn().
			Err(err).
			Dur("backoff", currentBackoff).
			Int("retry", retryCount).
			Msg("Hue bridge unreachable, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(currentBackoff):
		}

		// Calculate next backoff with multiplier, capped at max
		nextBackoff := time.Duration(float64(currentBackoff) * config.Multiplier)
		if nextBackoff > config.MaxBackoff {
			nextBackoff = config.MaxBackoff
		}
		currentBackoff = nextBackoff
	}
}

// Close releases the underlying client.
func (d *Driver) Close() error {
	d.connected.Store(false)
	return d.client.Close()
}

func toLightState(s effects.State) LightState {
	state := LightState{On: s.On}
	if s.XY != nil {
		state.XY = []float64{s.XY[0], s.XY[1]}
	}
	if s.Brightness != nil {
		bri := Brightness(*s.Brightness)
		state.Bri = &bri
	}
	if s.TransitionTicks != nil {
		ticks := uint16(min(max(*s.TransitionTicks, 0), math.MaxUint16))
		state.TransitionTime = &ticks
	}
	return state
}

// Brightness converts a 0..1 level to the bridge scale 0..254.
func Brightness(level float64) uint8 {
	level = min(max(level, 0), 1)
	return uint8(math.Round(level * 254))
}
