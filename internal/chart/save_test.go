package chart

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{"jpeg", FormatJPEG, false},
		{"jpg", FormatJPEG, false},
		{"gif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormat_Ext(t *testing.T) {
	if got := FormatPNG.Ext(); got != ".png" {
		t.Errorf("FormatPNG.Ext() = %q", got)
	}
	if got := FormatJPEG.Ext(); got != ".jpg" {
		t.Errorf("FormatJPEG.Ext() = %q", got)
	}
}

func TestSave(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	dir := t.TempDir()

	for _, format := range []Format{FormatPNG, FormatJPEG} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(dir, "chart"+format.Ext())
			if err := Save(path, img, format); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			cfg, name, err := image.DecodeConfig(f)
			if err != nil {
				t.Fatalf("DecodeConfig() error = %v", err)
			}
			if name != string(format) || cfg.Width != 32 || cfg.Height != 16 {
				t.Errorf("decoded %s %dx%d, want %s 32x16", name, cfg.Width, cfg.Height, format)
			}
		})
	}

	err := Save(filepath.Join(dir, "chart.gif"), img, Format("gif"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Save(gif) error = %v, want ErrUnknownFormat", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "chart.gif")); !os.IsNotExist(err) {
		t.Error("Save(gif) created a file")
	}
}
