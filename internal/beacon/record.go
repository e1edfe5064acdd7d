// Package beacon turns decoded beacon frames into one record per network and
// capture source.
package beacon

// Record describes a single network (BSSID) observed in one capture source.
// Records are values; they are not modified once produced by a Pipeline.
type Record struct {
	SSID           string `json:"ssid"`           // Network name, HiddenSSID when not advertised
	BSSID          string `json:"bssid"`          // Network identity, the deduplication key
	TransmitterMAC string `json:"transmitterMac"` // Link-layer sender address
	PHYType        string `json:"phyType"`        // Radio standard, e.g. "802.11n"
	Channel        string `json:"channel"`        // Channel number as decoded
	Frequency      string `json:"frequency"`      // Channel frequency, e.g. "5180 MHz"
	SignalDBm      *int   `json:"signalDbm"`      // Antenna signal in dBm (nil if not reported)
	NoiseDBm       *int   `json:"noiseDbm"`       // Antenna noise in dBm (nil if not reported)
	SNR            *int   `json:"snr"`            // Signal minus noise in dB (nil unless both known)
	Source         string `json:"source"`         // Label of the capture run
}

// Run is the output of one Pipeline run over a capture source.
type Run struct {
	Source  string
	Records []Record
	Stats   Stats
}

// Stats counts what happened to the frames of one run.
type Stats struct {
	Frames     int // Frames read from the source
	Duplicates int // Frames dropped because their BSSID was already seen
	Skipped    int // Frames dropped because they were malformed
}
