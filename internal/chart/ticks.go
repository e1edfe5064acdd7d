package chart

import (
	"math"
	"strconv"
)

// pixelsPerTick is the minimum vertical spacing between two tick labels.
const pixelsPerTick = 22

// Axis maps values onto the vertical pixel range of a plot area.
type Axis struct {
	Min, Max float64
	Step     float64
}

// NiceStep returns the smallest 1, 2 or 5 times a power of ten step that
// keeps the labels of span at least pixelsPerTick apart over pixels.
func NiceStep(span float64, pixels int) float64 {
	if span <= 0 || pixels <= 0 {
		return 1
	}

	maxTicks := math.Max(1, float64(pixels)/pixelsPerTick)
	target := span / maxTicks

	magnitude := math.Pow(10, math.Floor(math.Log10(target)))
	for _, m := range []float64{1, 2, 5, 10} {
		if step := m * magnitude; step >= target {
			return step
		}
	}
	return 10 * magnitude
}

// NewAxis creates an axis over [lo, hi] with a preferred tick step. When the
// preferred step would crowd the labels over pixels, or is zero, a nice step is
// used instead.
func NewAxis(lo, hi, step float64, pixels int) Axis {
	if hi <= lo {
		hi = lo + 1
	}
	if nice := NiceStep(hi-lo, pixels); step <= 0 || step < nice {
		step = nice
	}
	return Axis{Min: lo, Max: hi, Step: step}
}

// Ticks returns the tick values inside the axis range.
func (a Axis) Ticks() []float64 {
	var ticks []float64
	start := math.Ceil(a.Min/a.Step) * a.Step
	for i := 0; ; i++ {
		v := start + float64(i)*a.Step
		if v > a.Max+a.Step*1e-9 {
			break
		}
		ticks = append(ticks, v)
	}
	return ticks
}

// Label formats a tick value with as many decimals as the step needs.
func (a Axis) Label(v float64) string {
	decimals := 0
	if a.Step < 1 {
		decimals = int(math.Ceil(-math.Log10(a.Step)))
	}
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// pixel maps v onto [top, bottom], the maximum at the top.
func (a Axis) pixel(v float64, top, bottom int) int {
	ratio := (v - a.Min) / (a.Max - a.Min)
	return bottom - int(math.Round(ratio*float64(bottom-top)))
}
