package capture

import "strings"

// Field names use the wireshark display-filter vocabulary so records produced by
// the native decoder and by tshark can be read the same way.
const (
	FieldTags        = "wlan.tag"               // Tag list, one entry per information element
	FieldTransmitter = "wlan.ta"                // Transmitter address
	FieldBSSID       = "wlan.bssid"             // BSS identifier
	FieldSSID        = "wlan.ssid"              // Raw SSID, tshark only
	FieldChannel     = "wlan_radio.channel"     // Channel number
	FieldFrequency   = "wlan_radio.frequency"   // Channel center frequency in MHz
	FieldPHY         = "wlan_radio.phy"         // PHY type code
	FieldSignal      = "radiotap.dbm_antsignal" // Antenna signal in dBm
	FieldNoise       = "radiotap.dbm_antnoise"  // Antenna noise in dBm
)

// Frame is a decoded frame exposed as a bag of named fields. Any field may be
// absent; Lookup reports false when it is.
type Frame interface {
	Lookup(name string) ([]string, bool)
}

// Value returns the first value of the named field. A field that is present
// but carries no values is reported as absent.
func Value(f Frame, name string) (string, bool) {
	values, ok := f.Lookup(name)
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Record is a map-backed Frame.
type Record map[string][]string

func (r Record) Lookup(name string) ([]string, bool) {
	values, ok := r[name]
	return values, ok
}

// Set replaces the values of the named field.
func (r Record) Set(name string, values ...string) {
	r[name] = values
}

// Add appends values to the named field.
func (r Record) Add(name string, values ...string) {
	r[name] = append(r[name], values...)
}

// Tag formats an information element the way wireshark displays it in the
// tag list, e.g. `Tag: SSID parameter set: "HomeNet"`.
func Tag(name, value string) string {
	var sb strings.Builder
	sb.WriteString("Tag: ")
	sb.WriteString(name)
	sb.WriteString(": ")
	sb.WriteString(value)
	return sb.String()
}

// SSIDTag formats the SSID element of a tag list.
func SSIDTag(ssid string) string {
	return Tag("SSID parameter set", `"`+ssid+`"`)
}
