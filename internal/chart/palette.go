package chart

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	paletteHueStart = 205.0
	goldenAngle     = 137.508
)

// Color returns the i-th series color. Hues advance by the golden angle so a
// color never depends on how many series there are.
func Color(i int) color.Color {
	hue := math.Mod(paletteHueStart+float64(i)*goldenAngle, 360)
	return colorful.Hsv(hue, 0.70, 0.85)
}

// Palette returns the first n series colors.
func Palette(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i] = Color(i)
	}
	return colors
}

// MustHex parses a "#rrggbb" color, panicking on malformed input. It is meant
// for package level color tables.
func MustHex(s string) color.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// withAlpha returns c with the given opacity.
func withAlpha(c color.Color, alpha float64) color.Color {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return c
	}
	r, g, b := cf.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha * 0xff))}
}

// pick returns colors[i] cycling through colors, or the series palette when
// colors is empty.
func pick(colors []color.Color, i int) color.Color {
	if len(colors) == 0 {
		return Color(i)
	}
	return colors[i%len(colors)]
}
