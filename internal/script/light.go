package script

import (
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/gsilight/internal/effects"
)

// lightModule exposes the effect primitives to scripts. Every call goes
// through the shared Player, so connection checks and ordering still apply.
type lightModule struct {
	player *effects.Player
}

func (m *lightModule) Loader(L *lua.LState) int {
	mod := L.NewTable()

	L.SetField(mod, "solid", L.NewFunction(m.solid))
	L.SetField(mod, "off", L.NewFunction(m.off))
	L.SetField(mod, "pulse", L.NewFunction(m.pulse))
	L.SetField(mod, "flash", L.NewFunction(m.flash))
	L.SetField(mod, "rainbow", L.NewFunction(m.rainbow))
	L.SetField(mod, "sleep", L.NewFunction(m.sleep))
	L.SetField(mod, "connected", L.NewFunction(m.connected))

	L.Push(mod)
	return 1
}

// light.solid(color, brightness, ticks)
func (m *lightModule) solid(L *lua.LState) int {
	c := checkColor(L, 1)
	bri := float64(L.OptNumber(2, effects.BrightnessNormal))
	ticks := L.OptInt(3, effects.TicksDefault)
	m.player.Solid(contextOf(L), c, bri, ticks)
	return 0
}

// light.off(ticks)
func (m *lightModule) off(L *lua.LState) int {
	m.player.Off(contextOf(L), L.OptInt(1, effects.TicksDefault))
	return 0
}

// light.pulse(color, duration_ms)
func (m *lightModule) pulse(L *lua.LState) int {
	c := checkColor(L, 1)
	ms := L.OptInt(2, 1000)
	m.player.Pulse(contextOf(L), c, time.Duration(ms)*time.Millisecond)
	m.checkCancelled(L)
	return 0
}

// light.flash(color, times, interval_ms)
func (m *lightModule) flash(L *lua.LState) int {
	c := checkColor(L, 1)
	times := L.OptInt(2, 2)
	ms := L.OptInt(3, 300)
	m.player.Flash(contextOf(L), c, times, time.Duration(ms)*time.Millisecond)
	m.checkCancelled(L)
	return 0
}

// light.rainbow(duration_ms)
func (m *lightModule) rainbow(L *lua.LState) int {
	ms := L.OptInt(1, 5000)
	m.player.Rainbow(contextOf(L), time.Duration(ms)*time.Millisecond)
	m.checkCancelled(L)
	return 0
}

// light.sleep(ms)
func (m *lightModule) sleep(L *lua.LState) int {
	ms := L.CheckInt(1)
	if !m.player.Wait(contextOf(L), time.Duration(ms)*time.Millisecond) {
		L.RaiseError("sleep interrupted: %v", contextOf(L).Err())
	}
	return 0
}

// light.connected() -> bool
func (m *lightModule) connected(L *lua.LState) int {
	L.Push(lua.LBool(m.player.Connected()))
	return 1
}

// checkCancelled aborts the script once the context is done.
func (m *lightModule) checkCancelled(L *lua.LState) {
	if err := contextOf(L).Err(); err != nil {
		L.RaiseError("effect interrupted: %v", err)
	}
}
