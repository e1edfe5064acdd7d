package beacon

import (
	"strings"

	"github.com/roman-kulish/wifi-density/internal/capture"
)

// Defaults substituted for absent fields.
const (
	HiddenSSID          = "<hidden>"
	UnknownTransmitter  = "Unknown"
	UnknownChannel      = "Unknown"
	UnknownFrequency    = "Unknown"
	SignalNotApplicable = "N/A"
	NoiseAbsent         = ""
)

const ssidMarker = "SSID"

// Fields are the raw identity and radio values of a frame, each resolved to
// either the decoded value or its default.
type Fields struct {
	SSID           string
	BSSID          string
	TransmitterMAC string
	PHYCode        string
	Channel        string
	Frequency      string
	RawSignal      string // SignalNotApplicable when absent
	RawNoise       string // NoiseAbsent when absent
}

// Extract reads the fields of interest from a frame. Every field falls back to
// its default independently, so extraction never fails.
func Extract(f capture.Frame) Fields {
	transmitter := valueOr(f, capture.FieldTransmitter, UnknownTransmitter)

	return Fields{
		SSID:           extractSSID(f),
		BSSID:          valueOr(f, capture.FieldBSSID, transmitter),
		TransmitterMAC: transmitter,
		PHYCode:        valueOr(f, capture.FieldPHY, ""),
		Channel:        valueOr(f, capture.FieldChannel, UnknownChannel),
		Frequency:      valueOr(f, capture.FieldFrequency, UnknownFrequency),
		RawSignal:      valueOr(f, capture.FieldSignal, SignalNotApplicable),
		RawNoise:       valueOr(f, capture.FieldNoise, NoiseAbsent),
	}
}

// FormatFrequency renders a raw frequency value in MHz.
func FormatFrequency(raw string) string {
	return raw + " MHz"
}

func valueOr(f capture.Frame, name, def string) string {
	if v, ok := capture.Value(f, name); ok {
		return v
	}
	return def
}

// extractSSID finds the SSID entry of the tag list. The entry has the shape
// `Tag: SSID parameter set: "name"`; the name is the third colon-delimited
// segment. Anything that does not fit that shape is treated as hidden.
func extractSSID(f capture.Frame) string {
	tags, ok := f.Lookup(capture.FieldTags)
	if !ok {
		return HiddenSSID
	}

	for _, tag := range tags {
		if !strings.Contains(tag, ssidMarker) {
			continue
		}

		parts := strings.Split(tag, ":")
		if len(parts) < 3 {
			return HiddenSSID
		}

		ssid := strings.TrimSpace(parts[2])
		ssid = strings.Trim(ssid, `"'`)
		if ssid == "" {
			return HiddenSSID
		}
		return ssid
	}

	return HiddenSSID
}
