package chart

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
)

// BarChart is a vertical bar chart with one bar per label.
type BarChart struct {
	Title  string
	YLabel string
	Labels []string
	Values []float64

	// Colors are cycled through; the series palette is used when empty
	Colors []color.Color
}

// Bar renders a bar chart. Bars are half a slot wide and the value is printed
// above each bar.
func (r *Renderer) Bar(chart BarChart) (_ *image.RGBA, err error) {
	if len(chart.Labels) == 0 {
		return nil, ErrNoData
	}
	if len(chart.Labels) != len(chart.Values) {
		return nil, fmt.Errorf("bar chart has %d labels but %d values", len(chart.Labels), len(chart.Values))
	}

	space, err := r.categorySpace(chart.Labels)
	if err != nil {
		return nil, err
	}
	c, err := r.newCanvas(space)
	if err != nil {
		return nil, err
	}
	defer closeWithError(c, &err)

	top := 0.0
	for _, v := range chart.Values {
		top = math.Max(top, v)
	}
	// headroom for the value labels, whole number ticks
	axis := NewAxis(0, math.Max(1, top*1.1), 1, c.area.Dy())

	if err = c.drawFrame(chart.Title, chart.YLabel, axis); err != nil {
		return nil, err
	}

	n := len(chart.Labels)
	barWidth := max(2, c.area.Dx()/n/2)
	for i, v := range chart.Values {
		x := c.slotCenter(i, n)
		y := axis.pixel(v, c.area.Min.Y, c.area.Max.Y)

		fillRect(c.img, image.Rect(x-barWidth/2, y, x-barWidth/2+barWidth, c.area.Max.Y), pick(chart.Colors, i))

		label := strconv.FormatFloat(v, 'f', -1, 64)
		if err = c.ann.drawText(c.img, label, x, y-c.ann.textHeight()/2-2, alignCenter, textColor); err != nil {
			return nil, fmt.Errorf("drawing bar value: %w", err)
		}
	}

	if err = c.drawCategories(chart.Labels); err != nil {
		return nil, err
	}

	return c.img, nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
