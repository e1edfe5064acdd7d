package beacon

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

var (
	// ErrInvalidSignal is returned when a signal value is neither a number nor
	// SignalNotApplicable.
	ErrInvalidSignal = errors.New("invalid signal value")

	// ErrInvalidNoise is returned when a present noise value is not a number.
	ErrInvalidNoise = errors.New("invalid noise value")
)

// PHYTable resolves radio PHY codes to standard names. A table is immutable
// once created.
type PHYTable struct {
	names map[string]string
}

// StandardPHYTable maps the PHY codes found in beacon captures to 802.11
// amendment names.
var StandardPHYTable = NewPHYTable(map[string]string{
	"1": "802.11a",
	"2": "802.11b",
	"3": "802.11g",
	"4": "802.11n",
	"5": "802.11ac",
	"6": "802.11ax",
})

// NewPHYTable creates a table from a copy of names.
func NewPHYTable(names map[string]string) PHYTable {
	return PHYTable{names: maps.Clone(names)}
}

// Resolve returns the standard name for code, or "Unknown (<code>)" when the
// code is not in the table.
func (t PHYTable) Resolve(code string) string {
	if name, ok := t.names[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%s)", code)
}

// NormalizeSignal converts raw signal and noise values to dBm and derives the
// signal-to-noise ratio. SignalNotApplicable and NoiseAbsent map to nil; snr
// is only set when both signal and noise are.
func NormalizeSignal(rawSignal, rawNoise string) (signal, noise, snr *int, err error) {
	if rawSignal != SignalNotApplicable {
		v, err := strconv.Atoi(strings.TrimSpace(rawSignal))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %q", ErrInvalidSignal, rawSignal)
		}
		signal = &v
	}

	if rawNoise != NoiseAbsent {
		v, err := strconv.Atoi(strings.TrimSpace(rawNoise))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %q", ErrInvalidNoise, rawNoise)
		}
		noise = &v
	}

	if signal != nil && noise != nil {
		v := *signal - *noise
		snr = &v
	}
	return signal, noise, snr, nil
}
