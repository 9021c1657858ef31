// Package effects implements timed lighting programs on top of an abstract
// device capability.
package effects

import (
	"context"

	"github.com/dokzlo13/gsilight/internal/color"
)

// State is one instruction sent to every controlled device.
// Nil fields are left untouched by the device.
type State struct {
	On              bool
	XY              *[2]float64
	Brightness      *float64 // 0..1
	TransitionTicks *int     // deciseconds
}

// Device is the outbound lighting capability.
//
// SetState applies the same state to all ids. Implementations may contact the
// devices in parallel; per-device failures are logged, never returned.
type Device interface {
	SetState(ctx context.Context, ids []string, state State)
	ListDevices() []string
	IsConnected() bool
}

// ColorState builds an "on" instruction for c.
func ColorState(c color.Color, brightness float64, ticks int) State {
	x, y := c.XY()
	return State{
		On:              true,
		XY:              &[2]float64{x, y},
		Brightness:      &brightness,
		TransitionTicks: &ticks,
	}
}

// OffState builds an "off" instruction.
func OffState(ticks int) State {
	return State{On: false, TransitionTicks: &ticks}
}
