package effects

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/color"
)

// Transition ticks used by the primitives.
const (
	TicksInstant = 0
	TicksFast    = 2
	TicksDefault = 4
	TicksSlow    = 10
)

// Brightness levels used by the primitives.
const (
	BrightnessFull   = 1.0
	BrightnessDim    = 0.3
	BrightnessNormal = 0.7
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real-time SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Player runs effect primitives against a Device.
//
// A Player is not safe for concurrent use: primitives block until their last
// step is applied and callers run them one after another.
type Player struct {
	device Device
	sleep  SleepFunc
}

// NewPlayer creates a Player. A nil sleep uses Sleep.
func NewPlayer(device Device, sleep SleepFunc) *Player {
	if sleep == nil {
		sleep = Sleep
	}
	return &Player{device: device, sleep: sleep}
}

// Connected reports whether the device layer is reachable.
func (p *Player) Connected() bool {
	return p.device.IsConnected()
}

// apply sends one instruction. Connection is checked before every
// instruction because it can drop in the middle of a sequence.
func (p *Player) apply(ctx context.Context, st State) {
	if !p.device.IsConnected() {
		log.Debug().Msg("Device not connected, skipping instruction")
		return
	}
	p.device.SetState(ctx, p.device.ListDevices(), st)
}

// Wait pauses the sequence. It returns false when ctx is done and the
// remaining steps should be abandoned.
func (p *Player) Wait(ctx context.Context, d time.Duration) bool {
	return p.sleep(ctx, d) == nil
}

// Solid sets every device to c in a single instruction.
func (p *Player) Solid(ctx context.Context, c color.Color, brightness float64, ticks int) {
	p.apply(ctx, ColorState(c, brightness, ticks))
}

// Off turns every device off.
func (p *Player) Off(ctx context.Context, ticks int) {
	p.apply(ctx, OffState(ticks))
}

// Pulse goes bright, dims after half of total, then settles after the other half.
func (p *Player) Pulse(ctx context.Context, c color.Color, total time.Duration) {
	if !p.Connected() {
		return
	}
	half := total / 2

	p.Solid(ctx, c, BrightnessFull, TicksFast)
	if !p.Wait(ctx, half) {
		return
	}
	p.Solid(ctx, c, BrightnessDim, TicksFast)
	if !p.Wait(ctx, half) {
		return
	}
	p.Solid(ctx, c, BrightnessNormal, TicksDefault)
}

// Flash blinks c on and off repeats times, then settles to white.
func (p *Player) Flash(ctx context.Context, c color.Color, repeats int, interval time.Duration) {
	if !p.Connected() {
		return
	}

	for i := 0; i < repeats; i++ {
		p.Solid(ctx, c, BrightnessFull, TicksInstant)
		if !p.Wait(ctx, interval) {
			return
		}
		p.Off(ctx, TicksInstant)
		if !p.Wait(ctx, interval) {
			return
		}
	}

	p.Solid(ctx, color.White, BrightnessNormal, TicksDefault)
}

// Rainbow walks the rainbow palette at full brightness over total.
func (p *Player) Rainbow(ctx context.Context, total time.Duration) {
	if !p.Connected() {
		return
	}

	step := total / time.Duration(len(color.Rainbow))
	ticks := StepTicks(step)

	for _, c := range color.Rainbow {
		p.Solid(ctx, c, BrightnessFull, ticks)
		if !p.Wait(ctx, step) {
			return
		}
	}
}

// Reset returns the lights to a warm white.
func (p *Player) Reset(ctx context.Context) {
	p.Solid(ctx, color.WarmWhite, BrightnessNormal, TicksSlow)
}

// StepTicks converts a hold duration into a transition of the same length,
// in deciseconds.
func StepTicks(d time.Duration) int {
	return int(math.Round(float64(d) / float64(100*time.Millisecond)))
}

// SecondsToTicks converts whole seconds into transition ticks.
func SecondsToTicks(seconds int) int {
	return seconds * 10
}
