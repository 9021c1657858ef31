// Package color converts perceptual RGB colors into the CIE xy chromaticity
// space understood by Hue bridges.
package color

import "math"

// WhitePoint is the D65 chromaticity returned for colors without any light.
var WhitePoint = [2]float64{0.3127, 0.3290}

// Color is an RGB triple with components normalized to 0..1.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Named colors used by the built-in effect programs.
var (
	Red          = Color{R: 1.0, G: 0.0, B: 0.0}
	Orange       = Color{R: 1.0, G: 0.5, B: 0.0}
	Yellow       = Color{R: 1.0, G: 1.0, B: 0.0}
	Green        = Color{R: 0.0, G: 1.0, B: 0.0}
	Blue         = Color{R: 0.0, G: 0.0, B: 1.0}
	Purple       = Color{R: 0.5, G: 0.0, B: 1.0}
	White        = Color{R: 1.0, G: 1.0, B: 1.0}
	NeutralWhite = Color{R: 0.8, G: 0.8, B: 0.8}
	WarmWhite    = Color{R: 1.0, G: 0.8, B: 0.6}
	Gold         = Color{R: 1.0, G: 0.84, B: 0.0}
)

// Rainbow is the fixed palette walked by the rainbow sweep.
var Rainbow = []Color{Red, Orange, Yellow, Green, Blue, Purple}

// RGB builds a Color from normalized components.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// XY returns the chromaticity of c. See ToXY.
func (c Color) XY() (x, y float64) {
	return ToXY(c.R, c.G, c.B)
}

// ToXY converts normalized sRGB components to CIE xy chromaticity.
// Components outside 0..1 are clamped. A black input has no chromaticity and
// yields WhitePoint.
func ToXY(r, g, b float64) (x, y float64) {
	r = linearize(clamp(r))
	g = linearize(clamp(g))
	b = linearize(clamp(b))

	X := r*0.4124564 + g*0.3575761 + b*0.1804375
	Y := r*0.2126729 + g*0.7151522 + b*0.0721750
	Z := r*0.0193339 + g*0.1191920 + b*0.9503041

	sum := X + Y + Z
	if sum == 0 {
		return WhitePoint[0], WhitePoint[1]
	}
	return X / sum, Y / sum
}

// linearize removes the sRGB transfer curve from one channel.
func linearize(c float64) float64 {
	if c > 0.04045 {
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return c / 12.92
}

func clamp(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
