// Package script lets a Lua file replace the built-in effect program for
// selected event kinds.
//
//	local light = require("light")
//	local events = require("events")
//
//	events.on("victory", function(e)
//	    light.flash("gold", 5, 250)
//	end)
package script

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/gsilight/internal/effects"
	"github.com/dokzlo13/gsilight/internal/event"
)

// Runtime owns a Lua VM and the handlers registered by the loaded script.
//
// The VM is not thread-safe. Run is only called from the session goroutine,
// which is also the only caller of the effect Player.
type Runtime struct {
	L        *lua.LState
	handlers map[event.Kind]*lua.LFunction
}

// New creates a Runtime whose light module drives player.
func New(player *effects.Player) *Runtime {
	L := lua.NewState()
	r := &Runtime{
		L:        L,
		handlers: make(map[event.Kind]*lua.LFunction),
	}

	light := &lightModule{player: player}
	L.PreloadModule("log", logLoader)
	L.PreloadModule("light", light.Loader)
	L.PreloadModule("events", r.eventsLoader)

	return r
}

// LoadFile executes a script file, registering its handlers.
func (r *Runtime) LoadFile(path string) error {
	log.Info().Str("path", path).Msg("Loading Lua script")
	if err := r.L.DoFile(path); err != nil {
		return fmt.Errorf("failed to execute Lua script: %w", err)
	}
	log.Info().Int("handlers", len(r.handlers)).Msg("Lua script loaded successfully")
	return nil
}

// LoadString executes script source, registering its handlers.
func (r *Runtime) LoadString(src string) error {
	if err := r.L.DoString(src); err != nil {
		return fmt.Errorf("failed to execute Lua script: %w", err)
	}
	return nil
}

// Handles reports whether the script registered a handler for kind.
func (r *Runtime) Handles(kind event.Kind) bool {
	_, ok := r.handlers[kind]
	return ok
}

// Run calls the handler registered for e.Kind. It returns false when there
// is no handler or the handler failed, so the caller can fall back to the
// built-in program.
func (r *Runtime) Run(ctx context.Context, e event.Event) bool {
	fn, ok := r.handlers[e.Kind]
	if !ok {
		return false
	}

	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	err := r.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, r.eventTable(e))
	if err != nil {
		log.Error().Err(err).
			Str("event", string(e.Kind)).
			Str("event_id", e.ID).
			Msg("Lua handler failed, using built-in effect")
		return false
	}
	return true
}

// Close releases the VM.
func (r *Runtime) Close() {
	r.L.Close()
}

func (r *Runtime) eventTable(e event.Event) *lua.LTable {
	tbl := r.L.NewTable()
	r.L.SetField(tbl, "id", lua.LString(e.ID))
	r.L.SetField(tbl, "kind", lua.LString(e.Kind))
	r.L.SetField(tbl, "time", lua.LNumber(e.Time.Unix()))
	r.L.SetField(tbl, "kill_streak", lua.LNumber(e.KillStreak))
	r.L.SetField(tbl, "respawn_seconds", lua.LNumber(e.RespawnSeconds))
	return tbl
}

// eventsLoader provides events.on(kind, fn) and events.kinds.
func (r *Runtime) eventsLoader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "on", L.NewFunction(func(L *lua.LState) int {
		kind := event.Kind(L.CheckString(1))
		fn := L.CheckFunction(2)
		if !kind.Valid() {
			L.ArgError(1, fmt.Sprintf("unknown event kind %q", kind))
			return 0
		}
		if _, exists := r.handlers[kind]; exists {
			log.Warn().Str("event", string(kind)).Msg("Replacing Lua handler")
		}
		r.handlers[kind] = fn
		log.Debug().Str("event", string(kind)).Msg("Lua handler registered")
		return 0
	}))

	kinds := L.NewTable()
	for _, k := range event.Kinds {
		kinds.Append(lua.LString(k))
	}
	L.SetField(mod, "kinds", kinds)

	L.Push(mod)
	return 1
}
