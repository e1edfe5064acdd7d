// Package pcapfile decodes beacon frames from pcap and pcapng capture files
// recorded on a monitor-mode interface with radiotap headers.
package pcapfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/roman-kulish/wifi-density/internal/capture"
)

// ErrUnsupportedFormat is returned for files that are neither pcap nor pcapng.
var ErrUnsupportedFormat = errors.New("unsupported capture file format")

var (
	pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}
	pcapMagics  = [][]byte{
		{0xa1, 0xb2, 0xc3, 0xd4}, // microseconds, big endian
		{0xd4, 0xc3, 0xb2, 0xa1}, // microseconds, little endian
		{0xa1, 0xb2, 0x3c, 0x4d}, // nanoseconds, big endian
		{0x4d, 0x3c, 0xb2, 0xa1}, // nanoseconds, little endian
	}
)

// WithLogger sets the logger for the reader
func WithLogger(logger *slog.Logger) func(*Reader) {
	return func(r *Reader) {
		r.logger = logger
	}
}

// Reader is a capture.Source over the beacon frames of a capture file.
type Reader struct {
	file    io.Closer
	packets *gopacket.PacketSource
	logger  *slog.Logger

	current capture.Frame
	read    int
	err     error
	done    bool
}

// Open opens a capture file. A missing or unreadable file, or one that is not a
// pcap/pcapng capture, is reported here rather than during iteration.
func Open(path string, options ...func(*Reader)) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture file: %w", err)
	}

	r, err := NewReader(f, options...)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reading capture file '%s': %w", path, err)
	}
	r.file = f
	return r, nil
}

// NewReader creates a Reader over a pcap or pcapng stream.
func NewReader(in io.Reader, options ...func(*Reader)) (*Reader, error) {
	br := bufio.NewReader(in)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("%w: reading magic number: %w", ErrUnsupportedFormat, err)
	}

	var (
		data     gopacket.PacketDataSource
		linkType layers.LinkType
	)
	switch {
	case bytes.Equal(magic, pcapngMagic):
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("opening pcapng reader: %w", err)
		}
		data, linkType = ng, ng.LinkType()

	case isPcapMagic(magic):
		pr, err := pcapgo.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening pcap reader: %w", err)
		}
		data, linkType = pr, pr.LinkType()

	default:
		return nil, fmt.Errorf("%w: magic %x", ErrUnsupportedFormat, magic)
	}

	packets := gopacket.NewPacketSource(data, linkType)
	packets.DecodeOptions = gopacket.DecodeOptions{Lazy: true, NoCopy: true}

	r := Reader{
		packets: packets,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(&r)
	}

	r.logger.Debug("capture opened", slog.String("linkType", linkType.String()))
	return &r, nil
}

func isPcapMagic(magic []byte) bool {
	for _, m := range pcapMagics {
		if bytes.Equal(magic, m) {
			return true
		}
	}
	return false
}

// Next advances to the next beacon frame, skipping every other packet.
func (r *Reader) Next(ctx context.Context) bool {
	if r.done || r.err != nil {
		return false
	}

	for {
		if err := ctx.Err(); err != nil {
			r.err = err
			return false
		}

		packet, err := r.packets.NextPacket()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				r.done = true
				r.current = nil
				return false
			}
			r.err = fmt.Errorf("reading packet %d: %w", r.read+1, err)
			return false
		}
		r.read++

		frame, ok := beaconFrame(packet)
		if !ok {
			continue
		}

		r.current = frame
		return true
	}
}

func (r *Reader) Current() capture.Frame {
	return r.current
}

func (r *Reader) Error() error {
	return r.err
}

// Packets returns the number of packets read so far, beacons or not.
func (r *Reader) Packets() int {
	return r.read
}

func (r *Reader) Close() error {
	r.done = true
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
