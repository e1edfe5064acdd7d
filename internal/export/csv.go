// Package export writes beacon records to CSV files and reads them back.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/roman-kulish/wifi-density/internal/beacon"
)

// Header is the CSV column set, one column per record field.
var Header = []string{
	"SSID",
	"BSSID",
	"Transmitter MAC",
	"PHY Type",
	"Channel",
	"Frequency",
	"Signal Strength (dBm)",
	"Noise (dBm)",
	"SNR",
	"Source",
}

// ErrInvalidHeader is returned by ReadCSV for files with another column set.
var ErrInvalidHeader = errors.New("invalid CSV header")

// WriteCSV writes records to path and returns the number of rows written. The
// file is written next to its destination and renamed into place, so a failed
// export never leaves a partial file behind.
func WriteCSV(path string, records []beacon.Record) (n int, err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if n, err = Write(tmp, records); err != nil {
		return 0, err
	}
	if err = tmp.Sync(); err != nil {
		return 0, fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("renaming into place: %w", err)
	}
	return n, nil
}

// Write encodes records as CSV with a header row.
func Write(w io.Writer, records []beacon.Record) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for i, r := range records {
		row := []string{
			r.SSID,
			r.BSSID,
			r.TransmitterMAC,
			r.PHYType,
			r.Channel,
			r.Frequency,
			formatInt(r.SignalDBm),
			formatInt(r.NoiseDBm),
			formatInt(r.SNR),
			r.Source,
		}
		if err := cw.Write(row); err != nil {
			return i, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing CSV: %w", err)
	}
	return len(records), nil
}

// ReadCSV reads a file written by WriteCSV.
func ReadCSV(path string) (_ []beacon.Record, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer closeWithError(f, &err)

	return Read(f)
}

// Read decodes CSV rows in the WriteCSV layout. Empty numeric cells are nil.
func Read(r io.Reader) ([]beacon.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidHeader)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, name := range Header {
		if header[i] != name {
			return nil, fmt.Errorf("%w: column %d is %q, expected %q", ErrInvalidHeader, i+1, header[i], name)
		}
	}

	var records []beacon.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		rec := beacon.Record{
			SSID:           row[0],
			BSSID:          row[1],
			TransmitterMAC: row[2],
			PHYType:        row[3],
			Channel:        row[4],
			Frequency:      row[5],
			Source:         row[9],
		}
		if rec.SignalDBm, err = parseInt(row[6]); err != nil {
			return nil, fmt.Errorf("line %d: signal: %w", line, err)
		}
		if rec.NoiseDBm, err = parseInt(row[7]); err != nil {
			return nil, fmt.Errorf("line %d: noise: %w", line, err)
		}
		if rec.SNR, err = parseInt(row[8]); err != nil {
			return nil, fmt.Errorf("line %d: snr: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func parseInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
