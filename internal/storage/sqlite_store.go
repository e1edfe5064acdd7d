package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/roman-kulish/wifi-density/internal/beacon"
)

// DefaultMaxBatchSize is the number of records inserted per statement.
const DefaultMaxBatchSize = 500

// ErrNotFound is returned when a capture does not exist.
var ErrNotFound = errors.New("not found")

// WithMaxBatchSize sets the number of records inserted per statement
func WithMaxBatchSize(size int) func(*SqliteStore) {
	return func(s *SqliteStore) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath       string
	maxBatchSize int

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

var _ Store = (*SqliteStore)(nil)

// NewSqliteStore creates a store backed by the SQLite database at dbPath.
// Connections are opened on first use and the schema is created by the first
// write.
func NewSqliteStore(dbPath string, options ...func(*SqliteStore)) *SqliteStore {
	s := SqliteStore{
		dbPath:       dbPath,
		maxBatchSize: DefaultMaxBatchSize,
	}
	for _, option := range options {
		option(&s)
	}
	return &s
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateCapture(ctx context.Context, source, path, decoder string) (captureID int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertCaptureSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, source, path, decoder)
	if err != nil {
		err = fmt.Errorf("inserting capture: %w", err)
		return
	}

	captureID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting capture ID: %w", err)
	}
	return
}

func (s *SqliteStore) Capture(ctx context.Context, id int64) (capture *Capture, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectCaptureSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var c Capture
	if err = stmt.QueryRowContext(ctx, id).Scan(&c.ID, &c.CreatedAt, &c.Source, &c.Path, &c.Decoder, &c.Beacons); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("capture %d: %w", id, ErrNotFound)
			return
		}
		err = fmt.Errorf("scanning capture: %w", err)
		return
	}

	return &c, nil
}

func (s *SqliteStore) Captures(ctx context.Context) (captures []*Capture, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectCapturesSQL)
	if err != nil {
		err = fmt.Errorf("querying captures: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var c Capture
		if err = rows.Scan(&c.ID, &c.CreatedAt, &c.Source, &c.Path, &c.Decoder, &c.Beacons); err != nil {
			err = fmt.Errorf("scanning capture: %w", err)
			return
		}
		captures = append(captures, &c)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating captures: %w", err)
	}
	return
}

func (s *SqliteStore) StoreBeacons(ctx context.Context, captureID int64, records []beacon.Record) (err error) {
	if len(records) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	for start := 0; start < len(records); start += s.maxBatchSize {
		end := min(start+s.maxBatchSize, len(records))
		if err = insertBeacons(ctx, tx, captureID, records[start:end]); err != nil {
			return fmt.Errorf("batch inserting beacons %d-%d: %w", start+1, end, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func insertBeacons(ctx context.Context, tx *sql.Tx, captureID int64, records []beacon.Record) error {
	// Prepare values array
	values := make([]any, 0, len(records)*10)

	var sb strings.Builder
	sb.WriteString(insertBeaconSQL)

	for i := range records {
		data := toBeaconData(captureID, &records[i])
		values = append(values,
			data.CaptureID,
			data.SSID,
			data.BSSID,
			data.TransmitterMAC,
			data.PHYType,
			data.Channel,
			data.Frequency,
			data.SignalDBm,
			data.NoiseDBm,
			data.SNR,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(beaconValuesPlaceholder)
	}

	_, err := tx.ExecContext(ctx, sb.String(), values...)
	return err
}

func (s *SqliteStore) Beacons(ctx context.Context, captureID int64) (records []beacon.Record, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectBeaconsSQL, captureID)
	if err != nil {
		err = fmt.Errorf("querying beacons: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data beaconData
		if err = rows.Scan(data.scanFields()...); err != nil {
			err = fmt.Errorf("scanning beacon: %w", err)
			return
		}
		records = append(records, data.record())
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating beacons: %w", err)
	}
	return
}

// ReadBeacons creates a BeaconReader over the stored records of all captures,
// or of the captures selected with WithCaptureIDs, in insertion order. The
// reader pages through the table in batches (WithBatchSize).
//
// The returned reader must be closed after use.
func (s *SqliteStore) ReadBeacons(ctx context.Context, opts ...ReaderOption) (*BeaconReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newBeaconReader(ctx, db, opts...)
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
