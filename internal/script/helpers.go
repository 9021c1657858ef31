package script

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dokzlo13/gsilight/internal/color"
)

// namedColors are the color names accepted by the light module.
var namedColors = map[string]color.Color{
	"red":           color.Red,
	"orange":        color.Orange,
	"yellow":        color.Yellow,
	"green":         color.Green,
	"blue":          color.Blue,
	"purple":        color.Purple,
	"white":         color.White,
	"neutral_white": color.NeutralWhite,
	"warm_white":    color.WarmWhite,
	"gold":          color.Gold,
}

// checkColor reads a color argument: a name, {r, g, b} or {r=, g=, b=}.
func checkColor(L *lua.LState, n int) color.Color {
	switch v := L.Get(n).(type) {
	case lua.LString:
		c, ok := namedColors[string(v)]
		if !ok {
			L.ArgError(n, fmt.Sprintf("unknown color %q", string(v)))
		}
		return c
	case *lua.LTable:
		if v.RawGetString("r") != lua.LNil || v.RawGetString("g") != lua.LNil || v.RawGetString("b") != lua.LNil {
			return color.RGB(number(v.RawGetString("r")), number(v.RawGetString("g")), number(v.RawGetString("b")))
		}
		return color.RGB(number(v.RawGetInt(1)), number(v.RawGetInt(2)), number(v.RawGetInt(3)))
	default:
		L.ArgError(n, "color name or table expected")
	}
	return color.Color{}
}

func number(v lua.LValue) float64 {
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// contextOf returns the context attached to L, or Background.
func contextOf(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// toGo converts a Lua value to a Go value for structured logging.
func toGo(v lua.LValue) interface{} {
	switch val := v.(type) {
	case lua.LString:
		return string(val)
	case lua.LNumber:
		return float64(val)
	case lua.LBool:
		return bool(val)
	case *lua.LTable:
		obj := make(map[string]interface{})
		val.ForEach(func(k, v lua.LValue) {
			obj[lua.LVAsString(k)] = toGo(v)
		})
		return obj
	case *lua.LNilType:
		return nil
	default:
		return v.String()
	}
}
