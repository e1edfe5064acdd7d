package chart

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

const (
	markerRadius  = 5
	markerOpacity = 0.7
	legendPadding = 8
)

// Point is a value placed in a category.
type Point struct {
	Category string
	Value    float64
}

// Series is a named set of points drawn in one color.
type Series struct {
	Name   string
	Points []Point
}

// ScatterChart places the points of every series in shared categories along
// the horizontal axis, with a legend naming the series.
type ScatterChart struct {
	Title  string
	YLabel string
	Series []Series

	// TickStep is the preferred value scale step, see BoxPlot.TickStep
	TickStep float64
}

// Scatter renders a scatter chart. Categories are laid out in order of first
// appearance across the series.
func (r *Renderer) Scatter(chart ScatterChart) (_ *image.RGBA, err error) {
	var categories []string
	index := map[string]int{}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range chart.Series {
		for _, p := range s.Points {
			if _, ok := index[p.Category]; !ok {
				index[p.Category] = len(categories)
				categories = append(categories, p.Category)
			}
			lo, hi = math.Min(lo, p.Value), math.Max(hi, p.Value)
		}
	}
	if len(categories) == 0 {
		return nil, ErrNoData
	}

	space, err := r.categorySpace(categories)
	if err != nil {
		return nil, err
	}
	c, err := r.newCanvas(space)
	if err != nil {
		return nil, err
	}
	defer closeWithError(c, &err)

	axis := NewAxis(math.Floor(lo)-1, math.Ceil(hi)+1, chart.TickStep, c.area.Dy())
	if err = c.drawFrame(chart.Title, chart.YLabel, axis); err != nil {
		return nil, err
	}

	for i, s := range chart.Series {
		col := withAlpha(Color(i), markerOpacity)
		for _, p := range s.Points {
			x := c.slotCenter(index[p.Category], len(categories))
			y := axis.pixel(p.Value, c.area.Min.Y, c.area.Max.Y)
			fillCircle(c.img, image.Pt(x, y), markerRadius, col)
		}
	}

	if err = c.drawCategories(categories); err != nil {
		return nil, err
	}
	if err = c.drawLegend(chart.Series); err != nil {
		return nil, err
	}

	return c.img, nil
}

// drawLegend draws a boxed legend in the top right corner of the plot area.
func (c *canvas) drawLegend(series []Series) error {
	if len(series) == 0 {
		return nil
	}

	rowHeight := max(c.ann.textHeight(), 2*markerRadius) + 4
	width := 0
	for _, s := range series {
		width = max(width, c.ann.textWidth(s.Name))
	}
	width += 2*markerRadius + 3*legendPadding

	box := image.Rect(
		c.area.Max.X-width-legendPadding,
		c.area.Min.Y+legendPadding,
		c.area.Max.X-legendPadding,
		c.area.Min.Y+legendPadding+rowHeight*len(series)+legendPadding,
	)
	fillRect(c.img, box, color.White)
	strokeRect(c.img, box, 1, gridColor)

	for i, s := range series {
		y := box.Min.Y + legendPadding/2 + rowHeight*i + rowHeight/2
		x := box.Min.X + legendPadding + markerRadius
		fillCircle(c.img, image.Pt(x, y), markerRadius, withAlpha(Color(i), markerOpacity))

		if err := c.ann.drawText(c.img, s.Name, x+markerRadius+legendPadding, y, alignLeft, textColor); err != nil {
			return fmt.Errorf("drawing legend: %w", err)
		}
	}
	return nil
}
