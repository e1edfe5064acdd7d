package storage

const (
	initSchemaSQL = `
CREATE TABLE IF NOT EXISTS captures (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    source     TEXT      NOT NULL,
    path       TEXT      NOT NULL,
    decoder    TEXT      NOT NULL
);

CREATE TABLE IF NOT EXISTS beacons (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    capture_id      INTEGER NOT NULL REFERENCES captures (id) ON DELETE CASCADE,
    ssid            TEXT    NOT NULL,
    bssid           TEXT    NOT NULL,
    transmitter_mac TEXT    NOT NULL,
    phy_type        TEXT    NOT NULL,
    channel         TEXT    NOT NULL,
    frequency       TEXT    NOT NULL,
    signal_dbm      INTEGER,
    noise_dbm       INTEGER,
    snr             INTEGER
);`

	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_beacons_capture ON beacons (capture_id, id);
CREATE INDEX IF NOT EXISTS idx_beacons_bssid ON beacons (bssid);`

	insertCaptureSQL = `
INSERT INTO captures (created_at,
                      source,
                      path,
                      decoder)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?)`

	selectCaptureSQL = `
SELECT
    c.id,
    c.created_at,
    c.source,
    c.path,
    c.decoder,
    (SELECT COUNT(*) FROM beacons b WHERE b.capture_id = c.id)
FROM captures c
WHERE
    c.id = ?`

	selectCapturesSQL = `
SELECT
    c.id,
    c.created_at,
    c.source,
    c.path,
    c.decoder,
    (SELECT COUNT(*) FROM beacons b WHERE b.capture_id = c.id)
FROM captures c
ORDER BY c.id`

	insertBeaconSQL = `
INSERT INTO beacons (capture_id,
                     ssid,
                     bssid,
                     transmitter_mac,
                     phy_type,
                     channel,
                     frequency,
                     signal_dbm,
                     noise_dbm,
                     snr)
VALUES `

	beaconValuesPlaceholder = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

	selectBeaconsSQL = `
SELECT
    b.id,
    b.ssid,
    b.bssid,
    b.transmitter_mac,
    b.phy_type,
    b.channel,
    b.frequency,
    b.signal_dbm,
    b.noise_dbm,
    b.snr,
    c.source
FROM beacons b
    JOIN captures c ON c.id = b.capture_id
WHERE
    b.capture_id = ?
ORDER BY b.id`

	// selectBeaconPageSQL is completed with an optional capture filter and
	// the ordering/limit clause by the reader.
	selectBeaconPageSQL = `
SELECT
    b.id,
    b.ssid,
    b.bssid,
    b.transmitter_mac,
    b.phy_type,
    b.channel,
    b.frequency,
    b.signal_dbm,
    b.noise_dbm,
    b.snr,
    c.source
FROM beacons b
    JOIN captures c ON c.id = b.capture_id
WHERE
    b.id > ?`
)
