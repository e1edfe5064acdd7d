// Package chart draws bar, box and scatter charts onto images.
package chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

const (
	defaultWidth    = 900
	defaultHeight   = 600
	defaultFontSize = 11.0

	// Default border sizes in pixels
	defaultTopBorder    = 50
	defaultLeftBorder   = 80
	defaultBottomBorder = 50
	defaultRightBorder  = 30

	tickMarkLength = 5
	lineWidth      = 2
)

var (
	axisColor = color.Black
	gridColor = color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	textColor = color.Black
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to draw")

// BorderConfig defines the sizes of white space around the plot area
type BorderConfig struct {
	Top    int // Space for the title
	Left   int // Space for the value scale and its label
	Bottom int // Space for category labels
	Right  int // Right padding
}

// RenderConfig holds the configuration shared by all charts
type RenderConfig struct {
	Width    int     // Image width in pixels
	Height   int     // Image height in pixels
	FontSize float64 // Font size in points

	// Border configuration. A larger bottom border is used when category
	// labels have to be drawn vertically.
	BorderConfig BorderConfig
}

// Renderer draws charts with a common size, font and layout
type Renderer struct {
	config RenderConfig
}

// NewRenderer creates a new renderer, filling zero configuration values with
// defaults
func NewRenderer(config RenderConfig) (*Renderer, error) {
	if config.Width < 0 || config.Height < 0 || config.FontSize < 0 {
		return nil, fmt.Errorf("invalid render size: %dx%d, font size %.1f", config.Width, config.Height, config.FontSize)
	}

	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}
	if config.FontSize == 0 {
		config.FontSize = defaultFontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	b := config.BorderConfig
	if b.Left+b.Right >= config.Width || b.Top+b.Bottom >= config.Height {
		return nil, fmt.Errorf("borders leave no plot area in a %dx%d image", config.Width, config.Height)
	}

	return &Renderer{config: config}, nil
}

// Config returns the effective configuration.
func (r *Renderer) Config() RenderConfig {
	return r.config
}

// canvas is one chart being drawn.
type canvas struct {
	img  *image.RGBA
	area image.Rectangle // Plot area inside the borders
	ann  *annotator
}

// newCanvas creates a white image and its plot area. labelSpace overrides the
// bottom border when it is larger.
func (r *Renderer) newCanvas(labelSpace int) (*canvas, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	ann, err := newAnnotator(r.config.FontSize)
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}

	b := r.config.BorderConfig
	bottom := max(b.Bottom, labelSpace)
	bottom = min(bottom, r.config.Height/2)

	return &canvas{
		img:  img,
		area: image.Rect(b.Left, b.Top, r.config.Width-b.Right, r.config.Height-bottom),
		ann:  ann,
	}, nil
}

func (c *canvas) Close() error {
	return c.ann.Close()
}

// drawFrame draws the title, the value axis with its grid and label, and the
// baseline of the plot area.
func (c *canvas) drawFrame(title, yLabel string, axis Axis) error {
	if title != "" {
		if err := c.ann.drawText(c.img, title, (c.img.Bounds().Dx())/2, c.area.Min.Y/2, alignCenter, textColor); err != nil {
			return fmt.Errorf("drawing title: %w", err)
		}
	}

	labelRight := c.area.Min.X - tickMarkLength - 3
	for _, v := range axis.Ticks() {
		y := axis.pixel(v, c.area.Min.Y, c.area.Max.Y)

		dashedHLine(c.img, c.area.Min.X, c.area.Max.X, y, gridColor)
		hLine(c.img, c.area.Min.X-tickMarkLength, c.area.Min.X, y, 1, axisColor)

		if err := c.ann.drawText(c.img, axis.Label(v), labelRight, y, alignRight, textColor); err != nil {
			return fmt.Errorf("drawing tick label: %w", err)
		}
	}

	if yLabel != "" {
		x := c.ann.textHeight()/2 + 4
		if err := c.ann.drawVerticalText(c.img, yLabel, x, (c.area.Min.Y+c.area.Max.Y)/2, alignCenter, textColor); err != nil {
			return fmt.Errorf("drawing axis label: %w", err)
		}
	}

	strokeRect(c.img, c.area, 1, axisColor)
	return nil
}

// drawCategories labels n equal slots along the bottom of the plot area,
// vertically when the labels do not fit horizontally.
func (c *canvas) drawCategories(labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	vertical := !fitsHorizontally(c.ann, labels, c.area.Dx()/len(labels))

	for i, label := range labels {
		label = shortLabel(label)
		x := c.slotCenter(i, len(labels))
		vLine(c.img, x, c.area.Max.Y, c.area.Max.Y+tickMarkLength, 1, axisColor)

		var err error
		if vertical {
			err = c.ann.drawVerticalText(c.img, label, x, c.area.Max.Y+tickMarkLength+3, alignRight, textColor)
		} else {
			err = c.ann.drawText(c.img, label, x, c.area.Max.Y+tickMarkLength+c.ann.textHeight()/2+3, alignCenter, textColor)
		}
		if err != nil {
			return fmt.Errorf("drawing category label: %w", err)
		}
	}
	return nil
}

// categorySpace returns the bottom border needed by the category labels.
func (r *Renderer) categorySpace(labels []string) (int, error) {
	ann, err := newAnnotator(r.config.FontSize)
	if err != nil {
		return 0, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	b := r.config.BorderConfig
	if len(labels) == 0 {
		return b.Bottom, nil
	}

	slot := (r.config.Width - b.Left - b.Right) / len(labels)
	if fitsHorizontally(ann, labels, slot) {
		return b.Bottom, nil
	}

	widest := 0
	for _, l := range labels {
		widest = max(widest, ann.textWidth(shortLabel(l)))
	}
	return widest + tickMarkLength + 12, nil
}

func fitsHorizontally(ann *annotator, labels []string, slot int) bool {
	for _, l := range labels {
		if ann.textWidth(shortLabel(l)) > slot-4 {
			return false
		}
	}
	return true
}

// slotCenter returns the x coordinate of the center of slot i out of n.
func (c *canvas) slotCenter(i, n int) int {
	slot := c.area.Dx() / n
	return c.area.Min.X + slot*i + slot/2
}

// shortLabel truncates long category labels.
func shortLabel(s string) string {
	const maxRunes = 24

	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes-3]) + "..."
}
