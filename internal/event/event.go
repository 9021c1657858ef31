// Package event defines gameplay events and detects them by diffing
// consecutive GSI snapshots.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of gameplay event.
type Kind string

const (
	KindSessionStarted  Kind = "session_started"
	KindKill            Kind = "kill"
	KindDeath           Kind = "death"
	KindRespawn         Kind = "respawn"
	KindAbilityUltimate Kind = "ability_ultimate"
	KindVictory         Kind = "victory"
	KindDefeat          Kind = "defeat"
	KindPaused          Kind = "paused"
	KindUnpaused        Kind = "unpaused"
)

// Kinds lists every event kind in dispatch order.
var Kinds = []Kind{
	KindSessionStarted,
	KindKill,
	KindDeath,
	KindRespawn,
	KindAbilityUltimate,
	KindVictory,
	KindDefeat,
	KindPaused,
	KindUnpaused,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Event is a single detected gameplay event.
// KillStreak is set for kills, RespawnSeconds for deaths.
type Event struct {
	ID             string    `json:"id"`
	Kind           Kind      `json:"kind"`
	Time           time.Time `json:"time"`
	KillStreak     int       `json:"kill_streak,omitempty"`
	RespawnSeconds int       `json:"respawn_seconds,omitempty"`
}

// New creates an event of the given kind with a fresh ID.
func New(kind Kind, at time.Time) Event {
	return Event{
		ID:   uuid.NewString(),
		Kind: kind,
		Time: at,
	}
}
