package tshark

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roman-kulish/wifi-density/internal/capture"
)

// BeaconFilter is the display filter that keeps beacon frames only.
const BeaconFilter = "wlan.fc.type_subtype == 8"

// Fields are the wireshark fields requested with -e. wlan.ssid is turned into
// the SSID tag list entry, the rest map onto frame fields unchanged.
var Fields = []string{
	capture.FieldTransmitter,
	capture.FieldBSSID,
	capture.FieldSSID,
	capture.FieldChannel,
	capture.FieldFrequency,
	capture.FieldPHY,
	capture.FieldSignal,
	capture.FieldNoise,
}

var errNoLayers = errors.New("no layers")

// ekNames maps the underscore names used in ek output back to field names.
var ekNames = func() map[string]string {
	m := make(map[string]string, len(Fields))
	for _, f := range Fields {
		m[strings.ReplaceAll(f, ".", "_")] = f
	}
	return m
}()

type ekPacket struct {
	Timestamp string                     `json:"timestamp"`
	Layers    map[string]json.RawMessage `json:"layers"`
}

// isPacketLine reports whether an ek output line carries packet layers rather
// than a bulk index header.
func isPacketLine(line []byte) bool {
	return bytes.Contains(line, []byte(`"layers"`))
}

// ParseLine decodes one ek packet line into a frame record.
func ParseLine(line []byte) (capture.Record, error) {
	var pkt ekPacket
	if err := json.Unmarshal(line, &pkt); err != nil {
		return nil, fmt.Errorf("decoding ek line: %w", err)
	}
	if pkt.Layers == nil {
		return nil, errNoLayers
	}

	frame := capture.Record{}
	for key, raw := range pkt.Layers {
		name, ok := ekNames[key]
		if !ok {
			continue
		}

		values, err := layerValues(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}

		if name == capture.FieldSSID {
			frame.Set(capture.FieldSSID, values...)
			if len(values) > 0 {
				frame.Set(capture.FieldTags, capture.SSIDTag(DecodeSSID(values[0])))
			}
			continue
		}
		frame.Set(name, values...)
	}

	return frame, nil
}

// layerValues accepts both the array form tshark emits for -e fields and a
// bare scalar.
func layerValues(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		values := make([]string, 0, len(t))
		for _, item := range t {
			values = append(values, fmt.Sprint(item))
		}
		return values, nil
	default:
		return []string{fmt.Sprint(t)}, nil
	}
}

// DecodeSSID returns the SSID text. Newer tshark releases print wlan.ssid as
// colon separated hex bytes, older ones as the string itself. The hex form is
// accepted only when it decodes to valid UTF-8.
func DecodeSSID(value string) string {
	parts := strings.Split(value, ":")
	if len(parts) < 2 {
		return value
	}

	b := make([]byte, 0, len(parts))
	for _, p := range parts {
		if len(p) != 2 {
			return value
		}
		v, err := hex.DecodeString(p)
		if err != nil {
			return value
		}
		b = append(b, v...)
	}
	if !utf8.Valid(b) {
		return value
	}
	return string(b)
}
