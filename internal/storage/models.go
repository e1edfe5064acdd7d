package storage

import (
	"database/sql"
	"time"

	"github.com/roman-kulish/wifi-density/internal/beacon"
)

// Capture is a processed capture file.
type Capture struct {
	ID        int64
	CreatedAt time.Time
	Source    string
	Path      string
	Decoder   string
	Beacons   int // Number of stored beacon records
}

type beaconData struct {
	ID             int64
	CaptureID      int64
	SSID           string
	BSSID          string
	TransmitterMAC string
	PHYType        string
	Channel        string
	Frequency      string
	SignalDBm      sql.NullInt64
	NoiseDBm       sql.NullInt64
	SNR            sql.NullInt64
	Source         string
}

func (b *beaconData) record() beacon.Record {
	return beacon.Record{
		SSID:           b.SSID,
		BSSID:          b.BSSID,
		TransmitterMAC: b.TransmitterMAC,
		PHYType:        b.PHYType,
		Channel:        b.Channel,
		Frequency:      b.Frequency,
		SignalDBm:      fromSQLNullInt(b.SignalDBm),
		NoiseDBm:       fromSQLNullInt(b.NoiseDBm),
		SNR:            fromSQLNullInt(b.SNR),
		Source:         b.Source,
	}
}

// scanFields returns the scan destinations in selectBeaconsSQL column order.
func (b *beaconData) scanFields() []any {
	return []any{
		&b.ID,
		&b.SSID,
		&b.BSSID,
		&b.TransmitterMAC,
		&b.PHYType,
		&b.Channel,
		&b.Frequency,
		&b.SignalDBm,
		&b.NoiseDBm,
		&b.SNR,
		&b.Source,
	}
}
