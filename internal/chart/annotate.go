package chart

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const dpi = 96.0

var parseFont = sync.OnceValues(func() (*truetype.Font, error) {
	return freetype.ParseFont(goregular.TTF)
})

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

type annotator struct {
	context  *freetype.Context
	fontFace font.Face
}

func newAnnotator(fontSize float64) (*annotator, error) {
	parsedFont, err := parseFont()
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    fontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) textWidth(s string) int {
	return font.MeasureString(a.fontFace, s).Ceil()
}

func (a *annotator) textHeight() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Ceil()
}

// drawText draws s with its vertical center on y, aligned horizontally on x.
func (a *annotator) drawText(dst draw.Image, s string, x, y int, al align, c color.Color) error {
	switch al {
	case alignCenter:
		x -= a.textWidth(s) / 2
	case alignRight:
		x -= a.textWidth(s)
	}

	metrics := a.fontFace.Metrics()
	baseline := y + (metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2

	a.context.SetDst(dst)
	a.context.SetClip(dst.Bounds())
	a.context.SetSrc(image.NewUniform(c))

	if _, err := a.context.DrawString(s, freetype.Pt(x, baseline)); err != nil {
		return fmt.Errorf("drawing %q: %w", s, err)
	}
	return nil
}

// drawVerticalText draws s rotated a quarter turn counterclockwise, reading
// upwards and centered on x. The text is rendered on its own image and then
// transposed onto dst. alignLeft starts the text at y, alignRight ends it at y
// and alignCenter centers it on y.
func (a *annotator) drawVerticalText(dst draw.Image, s string, x, y int, al align, c color.Color) error {
	w, h := a.textWidth(s), a.textHeight()
	if w == 0 || h == 0 {
		return nil
	}

	text := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := a.drawText(text, s, 0, h/2, alignLeft, c); err != nil {
		return err
	}

	rotated := image.NewRGBA(image.Rect(0, 0, h, w))
	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			rotated.SetRGBA(ty, w-1-tx, text.RGBAAt(tx, ty))
		}
	}

	top := y - w/2
	switch al {
	case alignLeft:
		top = y - w
	case alignRight:
		top = y
	}

	r := image.Rect(x-h/2, top, x-h/2+h, top+w)
	draw.Draw(dst, r, rotated, image.Point{}, draw.Over)
	return nil
}
