package chart

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"
)

const jpegQuality = 98

// Format is an image file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ErrUnknownFormat is returned for an image format that cannot be written.
var ErrUnknownFormat = errors.New("unknown image format")

// ParseFormat parses a format name, accepting "jpg" for JPEG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// Encode writes img to w in the format.
func (f Format) Encode(w io.Writer, img image.Image) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Save writes img to path in the given format.
func Save(path string, img image.Image, format Format) (err error) {
	if format != FormatPNG && format != FormatJPEG {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}
	defer closeWithError(f, &err)

	if err = format.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s image: %w", format, err)
	}
	return nil
}
