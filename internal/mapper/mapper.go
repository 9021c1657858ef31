// Package mapper turns gameplay events and health readings into lighting
// programs.
package mapper

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/color"
	"github.com/dokzlo13/gsilight/internal/effects"
	"github.com/dokzlo13/gsilight/internal/event"
)

// Program names the lighting program selected for an event.
type Program string

const (
	ProgramNone         Program = ""
	ProgramScript       Program = "script"
	ProgramSessionStart Program = "session_start"
	ProgramRainbow      Program = "rainbow"
	ProgramFlash        Program = "flash"
	ProgramPulse        Program = "pulse"
	ProgramDeath        Program = "death"
	ProgramRespawn      Program = "respawn"
	ProgramUltimate     Program = "ultimate"
	ProgramVictory      Program = "victory"
	ProgramDefeat       Program = "defeat"
	ProgramPause        Program = "pause"
	ProgramUnpause      Program = "unpause"
)

// Kill streak thresholds.
const (
	RampageStreak = 5
	SpreeStreak   = 3
)

// Program colors.
var (
	sessionColor  = color.RGB(0.2, 0.4, 1.0)
	killColor     = color.RGB(1.0, 0.1, 0.0)
	deathColor    = color.RGB(0.1, 0.0, 0.0)
	reviveColor   = color.RGB(0.3, 0.1, 0.1)
	ultimateColor = color.RGB(0.4, 0.0, 1.0)
	defeatColor   = color.RGB(0.0, 0.0, 0.3)
	pauseColor    = color.RGB(0.5, 0.5, 0.5)
)

// deathHold is how long the lights stay dark before brightening towards respawn.
const deathHold = 3 * time.Second

// Overrides replaces built-in programs. Run reports whether it handled e.
type Overrides interface {
	Run(ctx context.Context, e event.Event) bool
}

// Mapper dispatches events to effect programs.
// Dispatch and UpdateHealth must be called from a single goroutine.
type Mapper struct {
	player    *effects.Player
	overrides Overrides
}

// New creates a Mapper. overrides may be nil.
func New(player *effects.Player, overrides Overrides) *Mapper {
	return &Mapper{
		player:    player,
		overrides: overrides,
	}
}

// ProgramFor returns the built-in program for e.
func ProgramFor(e event.Event) Program {
	switch e.Kind {
	case event.KindSessionStarted:
		return ProgramSessionStart
	case event.KindKill:
		switch {
		case e.KillStreak >= RampageStreak:
			return ProgramRainbow
		case e.KillStreak >= SpreeStreak:
			return ProgramFlash
		default:
			return ProgramPulse
		}
	case event.KindDeath:
		return ProgramDeath
	case event.KindRespawn:
		return ProgramRespawn
	case event.KindAbilityUltimate:
		return ProgramUltimate
	case event.KindVictory:
		return ProgramVictory
	case event.KindDefeat:
		return ProgramDefeat
	case event.KindPaused:
		return ProgramPause
	case event.KindUnpaused:
		return ProgramUnpause
	}
	return ProgramNone
}

// Dispatch runs the program for e and blocks until its last step is applied.
// It returns the program that ran.
func (m *Mapper) Dispatch(ctx context.Context, e event.Event) Program {
	if m.overrides != nil && m.overrides.Run(ctx, e) {
		log.Info().Str("event", string(e.Kind)).Str("event_id", e.ID).Msg("Event handled by script")
		return ProgramScript
	}

	program := ProgramFor(e)
	logger := log.Info().
		Str("event", string(e.Kind)).
		Str("event_id", e.ID).
		Str("program", string(program))
	switch e.Kind {
	case event.KindKill:
		logger = logger.Int("kill_streak", e.KillStreak)
	case event.KindDeath:
		logger = logger.Int("respawn_seconds", e.RespawnSeconds)
	}
	logger.Msg("Dispatching effect")

	m.run(ctx, program, e)
	return program
}

func (m *Mapper) run(ctx context.Context, program Program, e event.Event) {
	p := m.player

	switch program {
	case ProgramSessionStart:
		p.Solid(ctx, sessionColor, 0.5, 30)

	case ProgramRainbow:
		p.Rainbow(ctx, 3*time.Second)

	case ProgramFlash:
		p.Flash(ctx, color.Red, 3, 200*time.Millisecond)

	case ProgramPulse:
		p.Pulse(ctx, killColor, 800*time.Millisecond)

	case ProgramDeath:
		p.Solid(ctx, deathColor, 0.2, effects.TicksSlow)
		if e.RespawnSeconds > 5 {
			if !p.Wait(ctx, deathHold) {
				return
			}
			// Brighten slowly so the room is lit again around respawn.
			p.Solid(ctx, reviveColor, 0.4, effects.SecondsToTicks(e.RespawnSeconds))
		}

	case ProgramRespawn:
		p.Flash(ctx, color.White, 1, 300*time.Millisecond)
		p.Solid(ctx, color.NeutralWhite, 0.6, effects.TicksSlow)

	case ProgramUltimate:
		p.Pulse(ctx, ultimateColor, 1500*time.Millisecond)

	case ProgramVictory:
		for i := 0; i < 3; i++ {
			p.Rainbow(ctx, 2*time.Second)
			if ctx.Err() != nil {
				return
			}
		}
		p.Solid(ctx, color.Gold, 1.0, 20)

	case ProgramDefeat:
		p.Solid(ctx, defeatColor, 0.3, 50)

	case ProgramPause:
		p.Solid(ctx, pauseColor, 0.3, effects.TicksSlow)

	case ProgramUnpause:
		p.Solid(ctx, color.NeutralWhite, 0.6, effects.TicksSlow)

	default:
		log.Warn().Str("event", string(e.Kind)).Msg("No program for event")
	}
}
