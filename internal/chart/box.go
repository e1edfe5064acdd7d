package chart

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

var (
	medianColor  = color.RGBA{R: 0xff, A: 0xff}
	outlierColor = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// BoxStats are the quantities drawn for one box.
type BoxStats struct {
	Q1, Median, Q3          float64
	WhiskerLow, WhiskerHigh float64
	Outliers                []float64
}

// BoxGroup is one labelled box.
type BoxGroup struct {
	Label string
	Stats BoxStats
}

// BoxPlot is a box-and-whisker chart with one box per group.
type BoxPlot struct {
	Title  string
	YLabel string
	Groups []BoxGroup

	// TickStep is the preferred value scale step; a coarser one is used when
	// the labels would overlap. Zero picks a step automatically.
	TickStep float64

	// MedianFormat, when set, prints each median below its line
	MedianFormat string
}

// Box renders a box plot. The value range spans floor(min)-1 to ceil(max)+1 of
// everything drawn, outliers included.
func (r *Renderer) Box(chart BoxPlot) (_ *image.RGBA, err error) {
	if len(chart.Groups) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, len(chart.Groups))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, g := range chart.Groups {
		labels[i] = g.Label
		lo = math.Min(lo, g.Stats.WhiskerLow)
		hi = math.Max(hi, g.Stats.WhiskerHigh)
		for _, o := range g.Stats.Outliers {
			lo, hi = math.Min(lo, o), math.Max(hi, o)
		}
	}

	space, err := r.categorySpace(labels)
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

	n := len(chart.Groups)
	boxWidth := max(4, c.area.Dx()/n/2)
	for i, g := range chart.Groups {
		if err = c.drawBox(axis, c.slotCenter(i, n), boxWidth, g.Stats, chart.MedianFormat); err != nil {
			return nil, err
		}
	}

	if err = c.drawCategories(labels); err != nil {
		return nil, err
	}

	return c.img, nil
}

func (c *canvas) drawBox(axis Axis, x, width int, s BoxStats, medianFormat string) error {
	y := func(v float64) int {
		return axis.pixel(v, c.area.Min.Y, c.area.Max.Y)
	}
	left, right := x-width/2, x-width/2+width
	capLeft, capRight := x-width/4, x+width/4

	// whiskers and caps
	vLine(c.img, x, y(s.Q3), y(s.WhiskerHigh), lineWidth, axisColor)
	vLine(c.img, x, y(s.Q1), y(s.WhiskerLow), lineWidth, axisColor)
	hLine(c.img, capLeft, capRight, y(s.WhiskerHigh), lineWidth, axisColor)
	hLine(c.img, capLeft, capRight, y(s.WhiskerLow), lineWidth, axisColor)

	// box from Q3 (top) to Q1 (bottom), at least a line high
	box := image.Rect(left, y(s.Q3)-lineWidth/2, right, y(s.Q1)+lineWidth-lineWidth/2)
	fillRect(c.img, box, color.White)
	strokeRect(c.img, box, lineWidth, axisColor)

	medianY := y(s.Median)
	hLine(c.img, left, right, medianY, lineWidth, medianColor)

	for _, o := range s.Outliers {
		fillCircle(c.img, image.Pt(x, y(o)), 3, outlierColor)
	}

	if medianFormat != "" {
		label := fmt.Sprintf(medianFormat, s.Median)
		if err := c.ann.drawText(c.img, label, x, medianY+c.ann.textHeight()/2+lineWidth+2, alignCenter, medianColor); err != nil {
			return fmt.Errorf("drawing median label: %w", err)
		}
	}
	return nil
}
