package event

import (
	"strings"
	"time"

	"github.com/dokzlo13/gsilight/internal/gsi"
)

// UltimateManaDrop is the mana loss between two snapshots that is read as an
// ultimate cast. This is a heuristic: any expensive spell or mana burn above
// the threshold triggers it too.
const UltimateManaDrop = 100

// Detect compares two consecutive snapshots and returns the events between
// them. A nil prev means first contact and yields only KindSessionStarted.
//
// Each check runs only when both snapshots carry the block it reads.
// Events are returned in a fixed order: kill, death, respawn, ultimate,
// outcome, pause.
func Detect(prev *gsi.Snapshot, cur gsi.Snapshot, now time.Time) []Event {
	if prev == nil {
		return []Event{New(KindSessionStarted, now)}
	}

	var events []Event

	if prev.Player != nil && cur.Player != nil {
		if cur.Player.Kills > prev.Player.Kills {
			e := New(KindKill, now)
			e.KillStreak = cur.Player.KillStreak
			if e.KillStreak <= 0 {
				e.KillStreak = 1
			}
			events = append(events, e)
		}
	}

	if prev.Hero != nil && cur.Hero != nil {
		if prev.Hero.Alive && !cur.Hero.Alive {
			e := New(KindDeath, now)
			e.RespawnSeconds = cur.Hero.RespawnSeconds
			events = append(events, e)
		}
		if !prev.Hero.Alive && cur.Hero.Alive {
			events = append(events, New(KindRespawn, now))
		}
		if prev.Hero.Mana-cur.Hero.Mana > UltimateManaDrop && cur.Hero.Alive {
			events = append(events, New(KindAbilityUltimate, now))
		}
	}

	if prev.Map != nil && cur.Map != nil {
		if winner(prev.Map) == "" && winner(cur.Map) != "" {
			events = append(events, New(outcome(cur), now))
		}
		if prev.Map.Paused != cur.Map.Paused {
			kind := KindUnpaused
			if cur.Map.Paused {
				kind = KindPaused
			}
			events = append(events, New(kind, now))
		}
	}

	return events
}

// outcome decides victory or defeat once a winner is reported.
// Without a known player team the result is a defeat.
func outcome(cur gsi.Snapshot) Kind {
	if cur.Player == nil || cur.Player.TeamName == "" {
		return KindDefeat
	}
	if strings.EqualFold(cur.Player.TeamName, winner(cur.Map)) {
		return KindVictory
	}
	return KindDefeat
}

// winner returns the winning team, treating the client's "none" placeholder
// as no winner yet.
func winner(m *gsi.Map) string {
	if strings.EqualFold(m.WinTeam, "none") {
		return ""
	}
	return m.WinTeam
}
