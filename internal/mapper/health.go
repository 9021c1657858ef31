package mapper

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/color"
)

// HealthWindow is the minimum spacing between two health effects.
const HealthWindow = 500 * time.Millisecond

// Health bands, in percent.
const (
	CriticalHealth = 20
	LowHealth      = 50
)

// Throttle records when the last health effect was issued.
// The zero value accepts the first reading.
type Throttle struct {
	Last time.Time
}

// Allow reports whether a health effect may be issued at now.
func (t Throttle) Allow(now time.Time) bool {
	return t.Last.IsZero() || now.Sub(t.Last) >= HealthWindow
}

// HealthLook is the light state for a health reading.
type HealthLook struct {
	Color      color.Color
	Brightness float64
	Ticks      int
}

// HealthFor classifies a health percentage.
//
//	< 20%:  red, brightness rising from 0.3 at 20% to 1.0 at 0%, fast
//	< 50%:  orange shading to red as health drops, 0.7, medium
//	>= 50%: soft green-white, 0.6, slow
func HealthFor(percent float64) HealthLook {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	switch {
	case percent < CriticalHealth:
		return HealthLook{
			Color:      color.Red,
			Brightness: 0.3 + 0.7*(1-percent/CriticalHealth),
			Ticks:      2,
		}
	case percent < LowHealth:
		return HealthLook{
			Color:      color.RGB(1.0, 0.3+0.7*(percent/LowHealth), 0.0),
			Brightness: 0.7,
			Ticks:      5,
		}
	default:
		return HealthLook{
			Color:      color.RGB(0.8, 0.5+0.5*(percent/100), 0.8),
			Brightness: 0.6,
			Ticks:      10,
		}
	}
}

// UpdateHealth issues the health effect for percent unless th rejects it.
// It returns the throttle to use next and whether an effect was issued.
// A rejected reading leaves the throttle unchanged.
func (m *Mapper) UpdateHealth(ctx context.Context, th Throttle, percent float64, now time.Time) (Throttle, bool) {
	if !th.Allow(now) {
		return th, false
	}

	look := HealthFor(percent)
	log.Debug().
		Float64("health_percent", percent).
		Float64("brightness", look.Brightness).
		Msg("Applying health effect")

	m.player.Solid(ctx, look.Color, look.Brightness, look.Ticks)
	return Throttle{Last: now}, true
}
