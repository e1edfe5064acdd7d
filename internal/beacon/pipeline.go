package beacon

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roman-kulish/wifi-density/internal/capture"
)

// WithLogger sets the logger used to report skipped frames.
func WithLogger(logger *slog.Logger) func(*Pipeline) {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithPHYTable replaces the table used to resolve PHY codes.
func WithPHYTable(t PHYTable) func(*Pipeline) {
	return func(p *Pipeline) {
		p.phy = t
	}
}

// Pipeline converts the frames of a capture source into unique beacon records.
type Pipeline struct {
	logger *slog.Logger
	phy    PHYTable
}

// NewPipeline creates a Pipeline with a discard logger and the standard PHY table.
func NewPipeline(options ...func(*Pipeline)) *Pipeline {
	p := Pipeline{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		phy:    StandardPHYTable,
	}

	for _, option := range options {
		option(&p)
	}

	return &p
}

// Run reads frames to the end and returns one record per BSSID in the order
// the BSSIDs were first seen, each tagged with source. Malformed frames are
// logged and skipped. The returned error is the one that stopped the frame
// source, if any; records gathered up to that point are returned with it.
func (p *Pipeline) Run(ctx context.Context, frames capture.Source, source string) (Run, error) {
	run := Run{Source: source}
	dedup := NewDeduplicator()
	logger := p.logger.With(slog.String("source", source))

	for frames.Next(ctx) {
		run.Stats.Frames++

		rec, ok, err := p.process(frames.Current(), dedup, source)
		switch {
		case err != nil:
			run.Stats.Skipped++
			logger.Warn(fmt.Sprintf("skipping frame: %s", err.Error()), slog.Int("frame", run.Stats.Frames))
		case !ok:
			run.Stats.Duplicates++
		default:
			run.Records = append(run.Records, rec)
		}
	}
	if err := frames.Error(); err != nil {
		return run, fmt.Errorf("reading frames: %w", err)
	}

	return run, nil
}

// process returns ok=false for frames of a BSSID that was already admitted.
// A BSSID is claimed by its first frame even when that frame turns out to be
// malformed.
func (p *Pipeline) process(f capture.Frame, dedup *Deduplicator, source string) (Record, bool, error) {
	fields := Extract(f)

	if !dedup.Admit(fields.BSSID) {
		return Record{}, false, nil
	}

	signal, noise, snr, err := NormalizeSignal(fields.RawSignal, fields.RawNoise)
	if err != nil {
		return Record{}, false, fmt.Errorf("bssid %s: %w", fields.BSSID, err)
	}

	return Record{
		SSID:           fields.SSID,
		BSSID:          fields.BSSID,
		TransmitterMAC: fields.TransmitterMAC,
		PHYType:        p.phy.Resolve(fields.PHYCode),
		Channel:        fields.Channel,
		Frequency:      FormatFrequency(fields.Frequency),
		SignalDBm:      signal,
		NoiseDBm:       noise,
		SNR:            snr,
		Source:         source,
	}, true, nil
}
