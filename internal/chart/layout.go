package chart

import (
	"fmt"
	"image"
	"image/draw"
)

// Placeholder renders an empty chart with a title and a centered message, used
// in place of a chart that has no data.
func (r *Renderer) Placeholder(title, message string) (_ *image.RGBA, err error) {
	c, err := r.newCanvas(0)
	if err != nil {
		return nil, err
	}
	defer closeWithError(c, &err)

	if title != "" {
		if err = c.ann.drawText(c.img, title, c.img.Bounds().Dx()/2, c.area.Min.Y/2, alignCenter, textColor); err != nil {
			return nil, fmt.Errorf("drawing title: %w", err)
		}
	}

	strokeRect(c.img, c.area, 1, gridColor)

	center := image.Pt((c.area.Min.X+c.area.Max.X)/2, (c.area.Min.Y+c.area.Max.Y)/2)
	if err = c.ann.drawText(c.img, message, center.X, center.Y, alignCenter, textColor); err != nil {
		return nil, fmt.Errorf("drawing message: %w", err)
	}

	return c.img, nil
}

// HStack places images side by side, top aligned, on a white background as
// tall as the tallest of them.
func HStack(images ...image.Image) *image.RGBA {
	width, height := 0, 0
	for _, img := range images {
		width += img.Bounds().Dx()
		height = max(height, img.Bounds().Dy())
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)

	x := 0
	for _, img := range images {
		b := img.Bounds()
		draw.Draw(out, image.Rect(x, 0, x+b.Dx(), b.Dy()), img, b.Min, draw.Src)
		x += b.Dx()
	}
	return out
}
