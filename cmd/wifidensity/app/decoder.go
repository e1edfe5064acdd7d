package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roman-kulish/wifi-density/internal/capture"
	"github.com/roman-kulish/wifi-density/internal/capture/pcapfile"
	"github.com/roman-kulish/wifi-density/internal/capture/tshark"
)

// OpenSource opens a capture file with the configured decoder. A missing or
// unreadable file is reported here, before any frame is read.
func OpenSource(ctx context.Context, config *Config, path string, logger *slog.Logger) (capture.Source, error) {
	switch config.Decoder {
	case DecoderNative:
		r, err := pcapfile.Open(path, pcapfile.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return r, nil

	case DecoderTshark:
		r, err := tshark.Open(ctx, path, tshark.WithLogger(logger), tshark.WithBinary(config.TsharkPath))
		if err != nil {
			return nil, err
		}
		return r, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDecoder, string(config.Decoder))
	}
}
