package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/config"
	"github.com/dokzlo13/gsilight/internal/event"
	"github.com/dokzlo13/gsilight/internal/eventbus"
	"github.com/dokzlo13/gsilight/internal/feed"
)

// EventService fans detected events out to observers: the event log and the
// live WebSocket feed. Observers never drive the lights.
type EventService struct {
	cfg  *config.Config
	Bus  *eventbus.Bus
	Feed *feed.Hub
}

// NewEventService creates the bus and, if enabled, the feed hub.
func NewEventService(cfg *config.Config) *EventService {
	s := &EventService{
		cfg: cfg,
		Bus: eventbus.NewWithConfig(cfg.EventBus.GetWorkers(), cfg.EventBus.GetQueueSize()),
	}
	if cfg.Feed.Enabled {
		s.Feed = feed.NewHub(cfg.Feed.SendBuffer)
	}
	return s
}

// Start registers the observers.
func (s *EventService) Start() {
	s.Bus.SubscribeAll(logEvent)
	if s.Feed != nil {
		s.Bus.SubscribeAll(s.Feed.Broadcast)
	}
}

func logEvent(e event.Event) {
	entry := log.Debug().Str("event", string(e.Kind)).Str("event_id", e.ID)
	switch e.Kind {
	case event.KindKill:
		entry = entry.Int("kill_streak", e.KillStreak)
	case event.KindDeath:
		entry = entry.Int("respawn_seconds", e.RespawnSeconds)
	}
	entry.Msg("Event published")
}

// Close drains the bus and disconnects feed clients.
func (s *EventService) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
	defer cancel()
	s.Bus.Close(ctx)
	if s.Feed != nil {
		s.Feed.Close()
	}
}
