package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/roman-kulish/wifi-density/internal/beacon"
	"github.com/roman-kulish/wifi-density/internal/export"
	"github.com/roman-kulish/wifi-density/internal/report"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func intPtr(v int) *int { return &v }

type testBeacon struct {
	bssid  byte
	ssid   string
	signal int8
	noise  int8
}

// beaconPacket builds a radiotap encapsulated beacon on channel 36 with
// antenna signal and noise.
func beaconPacket(b testBeacon) []byte {
	const present = 1<<3 | 1<<5 | 1<<6 // channel, dBm antenna signal, dBm antenna noise

	pkt := []byte{0, 0}
	pkt = binary.LittleEndian.AppendUint16(pkt, 14)
	pkt = binary.LittleEndian.AppendUint32(pkt, present)
	pkt = binary.LittleEndian.AppendUint16(pkt, 5180)
	pkt = binary.LittleEndian.AppendUint16(pkt, 0x0140) // OFDM, 5 GHz
	pkt = append(pkt, byte(b.signal), byte(b.noise))

	addr := []byte{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, b.bssid}
	pkt = append(pkt, 0x80, 0x00, 0x00, 0x00)
	pkt = append(pkt, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	pkt = append(pkt, addr...)
	pkt = append(pkt, addr...)
	pkt = append(pkt, 0x10, 0x00)
	pkt = append(pkt, make([]byte, 8)...)
	pkt = append(pkt, 0x64, 0x00, 0x01, 0x04)
	pkt = append(pkt, 0x00, byte(len(b.ssid)))
	pkt = append(pkt, b.ssid...)
	return append(pkt, 0x01, 0x01, 0x8c)
}

func writeCapture(t *testing.T, dir, name string, beacons ...testBeacon) string {
	t.Helper()

	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	if err := w.WriteFileHeader(65536, layers.LinkTypeIEEE80211Radio); err != nil {
		t.Fatalf("writing pcap header: %v", err)
	}
	for i, b := range beacons {
		data := beaconPacket(b)
		ci := gopacket.CaptureInfo{
			Timestamp:     time.Date(2024, 5, 1, 12, 0, i, 0, time.UTC),
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := w.WritePacket(ci, data); err != nil {
			t.Fatalf("writing packet: %v", err)
		}
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing capture: %v", err)
	}
	return path
}

func wantRecord(bssid byte, ssid string, signal, noise int, source string) beacon.Record {
	addr := fmt.Sprintf("aa:aa:aa:aa:aa:%02x", bssid)
	return beacon.Record{
		SSID:           ssid,
		BSSID:          addr,
		TransmitterMAC: addr,
		PHYType:        "802.11a",
		Channel:        "36",
		Frequency:      "5180 MHz",
		SignalDBm:      intPtr(signal),
		NoiseDBm:       intPtr(noise),
		SNR:            intPtr(signal - noise),
		Source:         source,
	}
}

func testConfig(t *testing.T) *Config {
	t.Helper()

	dir := t.TempDir()
	c := NewConfig()
	c.OutputDir = filepath.Join(dir, "out")
	c.Chart = ChartConfig{Width: 480, Height: 360}
	c.Sources = []Source{
		{Label: "home_5g", Path: writeCapture(t, dir, "home_5g.pcap",
			testBeacon{bssid: 0xaa, ssid: "HomeNet", signal: -40, noise: -90},
			testBeacon{bssid: 0xbb, ssid: "Neighbour", signal: -60, noise: -90},
			testBeacon{bssid: 0xaa, ssid: "HomeNet", signal: -30, noise: -90},
		)},
		{Label: "tuc_5g", Path: writeCapture(t, dir, "tuc_5g.pcap",
			testBeacon{bssid: 0xaa, ssid: "HomeNet", signal: -75, noise: -95},
		)},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return c
}

func readCSV(t *testing.T, path string) []beacon.Record {
	t.Helper()

	records, err := export.ReadCSV(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return records
}

func assertCharts(t *testing.T, dir string) {
	t.Helper()

	for _, name := range []string{report.SSIDCountFile, report.PHYTypeCountFile, report.SignalNoiseFile, report.SignalPerSSIDFile} {
		if _, err := os.Stat(filepath.Join(dir, name+".png")); err != nil {
			t.Errorf("chart %s: %v", name, err)
		}
	}
}

func TestRun(t *testing.T) {
	c := testConfig(t)
	c.DBPath = filepath.Join(c.OutputDir, "beacons.sqlite")

	if err := Run(context.Background(), c, discardLogger); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	home := []beacon.Record{
		wantRecord(0xaa, "HomeNet", -40, -90, "home_5g"),
		wantRecord(0xbb, "Neighbour", -60, -90, "home_5g"),
	}
	tuc := []beacon.Record{
		wantRecord(0xaa, "HomeNet", -75, -95, "tuc_5g"),
	}

	if got := readCSV(t, filepath.Join(c.OutputDir, SourceFile("home_5g"))); !reflect.DeepEqual(got, home) {
		t.Errorf("home_5g records = %+v, want %+v", got, home)
	}
	if got := readCSV(t, filepath.Join(c.OutputDir, SourceFile("tuc_5g"))); !reflect.DeepEqual(got, tuc) {
		t.Errorf("tuc_5g records = %+v, want %+v", got, tuc)
	}

	combined := append(append([]beacon.Record{}, home...), tuc...)
	if got := readCSV(t, filepath.Join(c.OutputDir, CombinedFile)); !reflect.DeepEqual(got, combined) {
		t.Errorf("combined records = %+v, want %+v", got, combined)
	}

	assertCharts(t, c.OutputDir)

	t.Run("from database", func(t *testing.T) {
		records, err := loadDB(context.Background(), c.DBPath, discardLogger)
		if err != nil {
			t.Fatalf("loadDB() error = %v", err)
		}
		if !reflect.DeepEqual(records, combined) {
			t.Errorf("loadDB() = %+v, want %+v", records, combined)
		}
	})
}

func TestRun_FromCSV(t *testing.T) {
	dir := t.TempDir()
	records := []beacon.Record{
		wantRecord(0x01, "corp", -52, -91, "office"),
		{SSID: "<hidden>", BSSID: "aa:aa:aa:aa:aa:02", TransmitterMAC: "aa:aa:aa:aa:aa:02", PHYType: "Unknown ()", Channel: "Unknown", Frequency: "Unknown MHz", Source: "cafe"},
	}
	path := filepath.Join(dir, CombinedFile)
	if _, err := export.WriteCSV(path, records); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	c := NewConfig()
	c.FromCSV = path
	c.OutputDir = filepath.Join(dir, "charts")
	c.Chart = ChartConfig{Width: 480, Height: 360}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if err := Run(context.Background(), c, discardLogger); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	assertCharts(t, c.OutputDir)
}

func TestRun_FromDB(t *testing.T) {
	c := testConfig(t)
	c.DBPath = filepath.Join(c.OutputDir, "beacons.sqlite")
	c.NoCharts = true

	// two runs into the same database store each label twice
	for i := 0; i < 2; i++ {
		if err := Run(context.Background(), c, discardLogger); err != nil {
			t.Fatalf("Run() #%d error = %v", i+1, err)
		}
	}

	records, err := loadDB(context.Background(), c.DBPath, discardLogger)
	if err != nil {
		t.Fatalf("loadDB() error = %v", err)
	}
	want := []beacon.Record{
		wantRecord(0xaa, "HomeNet", -40, -90, "home_5g#1"),
		wantRecord(0xbb, "Neighbour", -60, -90, "home_5g#1"),
		wantRecord(0xaa, "HomeNet", -75, -95, "tuc_5g#2"),
		wantRecord(0xaa, "HomeNet", -40, -90, "home_5g#3"),
		wantRecord(0xbb, "Neighbour", -60, -90, "home_5g#3"),
		wantRecord(0xaa, "HomeNet", -75, -95, "tuc_5g#4"),
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("loadDB() = %+v, want %+v", records, want)
	}

	seen := make(map[string]struct{})
	for _, rec := range records {
		key := rec.Source + " " + rec.BSSID
		if _, ok := seen[key]; ok {
			t.Errorf("BSSID %s repeated in source %s", rec.BSSID, rec.Source)
		}
		seen[key] = struct{}{}
	}

	r := NewConfig()
	r.FromDB = c.DBPath
	r.OutputDir = filepath.Join(t.TempDir(), "charts")
	r.Chart = ChartConfig{Width: 480, Height: 360}
	if err = r.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err = Run(context.Background(), r, discardLogger); err != nil {
		t.Fatalf("Run() from database error = %v", err)
	}
	assertCharts(t, r.OutputDir)
}

func TestRun_NoCharts(t *testing.T) {
	c := testConfig(t)
	c.NoCharts = true

	if err := Run(context.Background(), c, discardLogger); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(c.OutputDir, CombinedFile)); err != nil {
		t.Errorf("combined file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(c.OutputDir, report.SSIDCountFile+".png")); !os.IsNotExist(err) {
		t.Errorf("chart written with charts disabled: %v", err)
	}
}

func TestRun_MissingCapture(t *testing.T) {
	c := testConfig(t)
	c.Sources[1].Path = filepath.Join(t.TempDir(), "missing.pcap")

	if err := Run(context.Background(), c, discardLogger); err == nil {
		t.Fatal("Run() with a missing capture succeeded")
	}

	// the first source completed before the failure
	if _, err := os.Stat(filepath.Join(c.OutputDir, SourceFile("home_5g"))); err != nil {
		t.Errorf("home_5g file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(c.OutputDir, CombinedFile)); !os.IsNotExist(err) {
		t.Errorf("combined file written after a failed source: %v", err)
	}
}

func TestRun_MissingDatabase(t *testing.T) {
	c := NewConfig()
	c.FromDB = filepath.Join(t.TempDir(), "missing.sqlite")
	c.OutputDir = t.TempDir()

	if err := Run(context.Background(), c, discardLogger); err == nil {
		t.Fatal("Run() with a missing database succeeded")
	}
}

func TestOpenSource_UnknownDecoder(t *testing.T) {
	c := NewConfig()
	c.Decoder = "scapy"

	if _, err := OpenSource(context.Background(), c, "capture.pcap", discardLogger); err == nil {
		t.Fatal("OpenSource() with an unknown decoder succeeded")
	}
}
