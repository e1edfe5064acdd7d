package pcapfile

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/roman-kulish/wifi-density/internal/capture"
)

const (
	flagCCK  = 0x0020
	flagOFDM = 0x0040
	flag2GHz = 0x0080
	flag5GHz = 0x0100
)

type testBeacon struct {
	subtype byte // frame control byte, 0x80 for beacons
	ta      []byte
	bssid   []byte
	ssid    *string
	freq    uint16
	flags   uint16
	signal  *int8
	noise   *int8
	noRadio bool
}

func mac(last byte) []byte {
	return []byte{0x02, 0x00, 0x00, 0x00, 0x00, last}
}

func strPtr(s string) *string { return &s }
func i8(v int8) *int8 { return &v }

// radiotapHeader builds a header with the channel, antenna signal and
// antenna noise fields as selected.
func radiotapHeader(b testBeacon) []byte {
	var present uint32
	var fields []byte

	if b.freq != 0 {
		present |= 1 << 3
		fields = binary.LittleEndian.AppendUint16(fields, b.freq)
		fields = binary.LittleEndian.AppendUint16(fields, b.flags)
	}
	if b.signal != nil {
		present |= 1 << 5
		fields = append(fields, byte(*b.signal))
	}
	if b.noise != nil {
		present |= 1 << 6
		fields = append(fields, byte(*b.noise))
	}

	hdr := []byte{0, 0}
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(8+len(fields)))
	hdr = binary.LittleEndian.AppendUint32(hdr, present)
	return append(hdr, fields...)
}

func dot11Frame(b testBeacon) []byte {
	fc := b.subtype
	if fc == 0 {
		fc = 0x80
	}

	frame := []byte{fc, 0x00, 0x00, 0x00}
	frame = append(frame, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	frame = append(frame, b.ta...)
	frame = append(frame, b.bssid...)
	frame = append(frame, 0x10, 0x00) // sequence control

	if fc != 0x80 {
		// probe request body: SSID wildcard only
		return append(frame, 0x00, 0x00)
	}

	frame = append(frame, make([]byte, 8)...) // timestamp
	frame = append(frame, 0x64, 0x00)         // beacon interval
	frame = append(frame, 0x01, 0x04)         // capabilities
	if b.ssid != nil {
		frame = append(frame, 0x00, byte(len(*b.ssid)))
		frame = append(frame, *b.ssid...)
	}
	frame = append(frame, 0x01, 0x01, 0x8c) // supported rates
	return frame
}

func packetData(b testBeacon) []byte {
	if b.noRadio {
		return dot11Frame(b)
	}
	return append(radiotapHeader(b), dot11Frame(b)...)
}

func writePcap(t *testing.T, linkType layers.LinkType, beacons ...testBeacon) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	if err := w.WriteFileHeader(65536, linkType); err != nil {
		t.Fatalf("writing pcap header: %v", err)
	}

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, b := range beacons {
		data := packetData(b)
		ci := gopacket.CaptureInfo{
			Timestamp:     ts.Add(time.Duration(i) * 100 * time.Millisecond),
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := w.WritePacket(ci, data); err != nil {
			t.Fatalf("writing packet %d: %v", i, err)
		}
	}
	return buf.Bytes()
}

func readAll(t *testing.T, r *Reader) []capture.Frame {
	t.Helper()

	var frames []capture.Frame
	for r.Next(context.Background()) {
		frames = append(frames, r.Current())
	}
	if err := r.Error(); err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	return frames
}

func value(f capture.Frame, name string) string {
	v, _ := capture.Value(f, name)
	return v
}

func TestReader_Beacons(t *testing.T) {
	data := writePcap(t, layers.LinkTypeIEEE80211Radio,
		testBeacon{ta: mac(1), bssid: mac(1), ssid: strPtr("HomeNet"), freq: 5180, flags: flag5GHz | flagOFDM, signal: i8(-40), noise: i8(-90)},
		testBeacon{subtype: 0x40, ta: mac(9), bssid: mac(9), freq: 2412, flags: flag2GHz | flagCCK},
		testBeacon{ta: mac(2), bssid: mac(3), ssid: strPtr(""), freq: 2437, flags: flag2GHz | flagCCK, signal: i8(-72)},
		testBeacon{ta: mac(4), bssid: mac(4), ssid: strPtr("Cafe"), freq: 2462, flags: flag2GHz | flagOFDM},
	)

	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("creating reader: %v", err)
	}
	defer r.Close()

	frames := readAll(t, r)
	if len(frames) != 3 {
		t.Fatalf("expected 3 beacons, got %d", len(frames))
	}
	if r.Packets() != 4 {
		t.Errorf("expected 4 packets read, got %d", r.Packets())
	}

	first := frames[0]
	checks := map[string]string{
		capture.FieldTransmitter: "02:00:00:00:00:01",
		capture.FieldBSSID:       "02:00:00:00:00:01",
		capture.FieldFrequency:   "5180",
		capture.FieldChannel:     "36",
		capture.FieldPHY:         phy80211a,
		capture.FieldSignal:      "-40",
		capture.FieldNoise:       "-90",
	}
	for field, want := range checks {
		if got := value(first, field); got != want {
			t.Errorf("%s: expected %q, got %q", field, want, got)
		}
	}
	tags, _ := first.Lookup(capture.FieldTags)
	if len(tags) == 0 || tags[0] != `Tag: SSID parameter set: "HomeNet"` {
		t.Errorf("unexpected tag list %q", tags)
	}

	second := frames[1]
	if got := value(second, capture.FieldBSSID); got != "02:00:00:00:00:03" {
		t.Errorf("expected bssid from address 3, got %q", got)
	}
	if got := value(second, capture.FieldTransmitter); got != "02:00:00:00:00:02" {
		t.Errorf("expected transmitter from address 2, got %q", got)
	}
	if got := value(second, capture.FieldChannel); got != "6" {
		t.Errorf("expected channel 6, got %q", got)
	}
	if got := value(second, capture.FieldPHY); got != phy80211b {
		t.Errorf("expected 802.11b code, got %q", got)
	}
	if _, ok := capture.Value(second, capture.FieldNoise); ok {
		t.Error("expected noise to be absent")
	}

	third := frames[2]
	if _, ok := capture.Value(third, capture.FieldSignal); ok {
		t.Error("expected signal to be absent")
	}
	if got := value(third, capture.FieldPHY); got != phy80211g {
		t.Errorf("expected 802.11g code, got %q", got)
	}
}

func TestReader_Pcapng(t *testing.T) {
	var buf bytes.Buffer
	w, err := pcapgo.NewNgWriter(&buf, layers.LinkTypeIEEE80211Radio)
	if err != nil {
		t.Fatalf("creating pcapng writer: %v", err)
	}
	data := packetData(testBeacon{ta: mac(1), bssid: mac(1), ssid: strPtr("Ng"), freq: 5745, flags: flag5GHz | flagOFDM, signal: i8(-61)})
	ci := gopacket.CaptureInfo{Timestamp: time.Now(), CaptureLength: len(data), Length: len(data)}
	if err = w.WritePacket(ci, data); err != nil {
		t.Fatalf("writing packet: %v", err)
	}
	if err = w.Flush(); err != nil {
		t.Fatalf("flushing: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("creating reader: %v", err)
	}
	frames := readAll(t, r)
	if len(frames) != 1 {
		t.Fatalf("expected 1 beacon, got %d", len(frames))
	}
	if got := value(frames[0], capture.FieldChannel); got != "149" {
		t.Errorf("expected channel 149, got %q", got)
	}
}

func TestReader_NoRadiotap(t *testing.T) {
	data := writePcap(t, layers.LinkTypeIEEE802_11, testBeacon{ta: mac(5), bssid: mac(5), ssid: strPtr("Plain"), noRadio: true})

	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("creating reader: %v", err)
	}
	frames := readAll(t, r)
	if len(frames) != 1 {
		t.Fatalf("expected 1 beacon, got %d", len(frames))
	}
	for _, field := range []string{capture.FieldSignal, capture.FieldNoise, capture.FieldFrequency, capture.FieldChannel, capture.FieldPHY} {
		if _, ok := capture.Value(frames[0], field); ok {
			t.Errorf("expected %s to be absent without radiotap", field)
		}
	}
}

func TestReader_UnsupportedFormat(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("SSID,BSSID\nfoo,bar\n")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pcapng"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home.pcap")
	data := writePcap(t, layers.LinkTypeIEEE80211Radio, testBeacon{ta: mac(1), bssid: mac(1), ssid: strPtr("Home")})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing capture: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("opening capture: %v", err)
	}
	if frames := readAll(t, r); len(frames) != 1 {
		t.Errorf("expected 1 beacon, got %d", len(frames))
	}
	if err = r.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if err = r.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestChannelNumber(t *testing.T) {
	tests := map[int]int{2412: 1, 2437: 6, 2472: 13, 2484: 14, 5180: 36, 5825: 165, 5955: 1, 6115: 33}
	for freq, want := range tests {
		got, ok := channelNumber(freq)
		if !ok || got != want {
			t.Errorf("%d MHz: expected channel %d, got %d (%v)", freq, want, got, ok)
		}
	}
	if _, ok := channelNumber(900); ok {
		t.Error("expected 900 MHz to have no channel")
	}
}
