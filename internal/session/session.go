// Package session threads game snapshots through the event differ and the
// effect mapper.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/event"
	"github.com/dokzlo13/gsilight/internal/gsi"
	"github.com/dokzlo13/gsilight/internal/mapper"
)

// State is everything carried from one snapshot to the next.
// It is a value: every step returns a new State instead of mutating one.
type State struct {
	Previous  *gsi.Snapshot
	Health    mapper.Throttle
	SessionID string
}

// Step diffs snap against state and returns the next state with the
// detected events. It has no side effects.
func Step(state State, snap gsi.Snapshot, now time.Time) (State, []event.Event) {
	events := event.Detect(state.Previous, snap, now)

	next := state
	current := snap
	next.Previous = &current
	for _, e := range events {
		if e.Kind == event.KindSessionStarted {
			next.SessionID = uuid.NewString()
		}
	}
	return next, events
}

// Dispatcher runs effects for events and health readings.
type Dispatcher interface {
	Dispatch(ctx context.Context, e event.Event) mapper.Program
	UpdateHealth(ctx context.Context, th mapper.Throttle, percent float64, now time.Time) (mapper.Throttle, bool)
}

// Publisher receives every detected event after its effect has run.
type Publisher interface {
	Publish(e event.Event)
}

// Controller processes snapshots one at a time.
type Controller struct {
	dispatcher Dispatcher
	publisher  Publisher
	now        func() time.Time
}

// NewController creates a Controller. publisher may be nil.
func NewController(dispatcher Dispatcher, publisher Publisher) *Controller {
	return &Controller{
		dispatcher: dispatcher,
		publisher:  publisher,
		now:        time.Now,
	}
}

// Process handles one snapshot fully: detect events, run their effects in
// order, then issue at most one throttled health effect.
func (c *Controller) Process(ctx context.Context, state State, snap gsi.Snapshot) State {
	next, events := Step(state, snap, c.now())

	if prev := state.Previous; prev != nil && prev.MatchID() != snap.MatchID() && snap.MatchID() != "" {
		log.Info().
			Str("match_id", snap.MatchID()).
			Str("session_id", next.SessionID).
			Msg("New match observed")
	}

	for _, e := range events {
		if e.Kind == event.KindSessionStarted {
			log.Info().Str("session_id", next.SessionID).Msg("Session started")
		}
		c.dispatcher.Dispatch(ctx, e)
		if c.publisher != nil {
			c.publisher.Publish(e)
		}
		if ctx.Err() != nil {
			return next
		}
	}

	if percent, ok := snap.HealthPercent(); ok {
		next.Health, _ = c.dispatcher.UpdateHealth(ctx, next.Health, percent, c.now())
	}

	return next
}

// Run processes snapshots from in until ctx is done or in is closed.
// Snapshots that arrive while an effect is running wait in in.
func (c *Controller) Run(ctx context.Context, in <-chan gsi.Snapshot) State {
	var state State
	log.Info().Msg("Session controller started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Session controller stopping")
			return state
		case snap, ok := <-in:
			if !ok {
				return state
			}
			state = c.Process(ctx, state, snap)
		}
	}
}
