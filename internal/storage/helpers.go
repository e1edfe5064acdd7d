package storage

import (
	"database/sql"
	"errors"

	"github.com/roman-kulish/wifi-density/internal/beacon"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

func toBeaconData(captureID int64, r *beacon.Record) *beaconData {
	return &beaconData{
		CaptureID:      captureID,
		SSID:           r.SSID,
		BSSID:          r.BSSID,
		TransmitterMAC: r.TransmitterMAC,
		PHYType:        r.PHYType,
		Channel:        r.Channel,
		Frequency:      r.Frequency,
		SignalDBm:      toSQLNullInt(r.SignalDBm),
		NoiseDBm:       toSQLNullInt(r.NoiseDBm),
		SNR:            toSQLNullInt(r.SNR),
		Source:         r.Source,
	}
}

func toSQLNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func fromSQLNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
