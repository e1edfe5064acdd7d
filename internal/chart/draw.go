package chart

import (
	"image"
	"image/color"
	"image/draw"
)

const dashLength = 4

func fillRect(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// hLine draws a horizontal line of the given width centered on y.
func hLine(img draw.Image, x0, x1, y, width int, c color.Color) {
	top := y - width/2
	fillRect(img, image.Rect(x0, top, x1, top+width), c)
}

// vLine draws a vertical line of the given width centered on x.
func vLine(img draw.Image, x, y0, y1, width int, c color.Color) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	left := x - width/2
	fillRect(img, image.Rect(left, y0, left+width, y1), c)
}

func dashedHLine(img draw.Image, x0, x1, y int, c color.Color) {
	for x := x0; x < x1; x += 2 * dashLength {
		hLine(img, x, min(x+dashLength, x1), y, 1, c)
	}
}

// strokeRect draws the outline of r with lines of the given width inside it.
func strokeRect(img draw.Image, r image.Rectangle, width int, c color.Color) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// circle is an alpha mask for a filled disc.
type circle struct {
	p image.Point
	r int
}

func (c *circle) ColorModel() color.Model {
	return color.AlphaModel
}

func (c *circle) Bounds() image.Rectangle {
	return image.Rect(c.p.X-c.r, c.p.Y-c.r, c.p.X+c.r, c.p.Y+c.r)
}

func (c *circle) At(x, y int) color.Color {
	xx, yy, rr := float64(x-c.p.X)+0.5, float64(y-c.p.Y)+0.5, float64(c.r)
	if xx*xx+yy*yy < rr*rr {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}

func fillCircle(img draw.Image, center image.Point, radius int, c color.Color) {
	mask := &circle{p: center, r: radius}
	draw.DrawMask(img, mask.Bounds(), image.NewUniform(c), image.Point{}, mask, mask.Bounds().Min, draw.Over)
}
