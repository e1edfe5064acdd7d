package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roman-kulish/wifi-density/internal/beacon"
)

// DefaultBatchSize is the number of records a BeaconReader fetches per query.
const DefaultBatchSize = 1000

// ReaderOption configures a BeaconReader.
type ReaderOption func(*BeaconReader)

// WithBatchSize sets the number of records fetched per query.
func WithBatchSize(size int) ReaderOption {
	return func(r *BeaconReader) {
		if size > 0 {
			r.batchSize = size
		}
	}
}

// WithCaptureIDs restricts the reader to the given captures.
func WithCaptureIDs(ids ...int64) ReaderOption {
	return func(r *BeaconReader) {
		r.captureIDs = append(r.captureIDs, ids...)
	}
}

// BeaconReader iterates over stored beacon records page by page.
type BeaconReader struct {
	db         *sql.DB
	batchSize  int
	captureIDs []int64

	query  string
	lastID int64
	batch  []beacon.Record
	pos    int
	eof    bool

	current *beacon.Record
	err     error
	closed  bool
}

func newBeaconReader(ctx context.Context, db *sql.DB, opts ...ReaderOption) (*BeaconReader, error) {
	r := &BeaconReader{
		db:        db,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	var sb strings.Builder
	sb.WriteString(selectBeaconPageSQL)
	if len(r.captureIDs) > 0 {
		sb.WriteString(" AND b.capture_id IN (")
		sb.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(r.captureIDs)), ", "))
		sb.WriteString(")")
	}
	sb.WriteString(" ORDER BY b.id LIMIT ?")
	r.query = sb.String()

	if err := r.fetch(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return r, nil
}

// Next advances the reader and returns true if there is another record.
func (r *BeaconReader) Next(ctx context.Context) bool {
	if r.closed || r.err != nil {
		return false
	}

	if r.pos >= len(r.batch) {
		if r.eof {
			r.current = nil
			return false
		}
		if err := r.fetch(ctx); err != nil {
			r.err = err
			return false
		}
		if len(r.batch) == 0 {
			r.current = nil
			return false
		}
	}

	r.current = &r.batch[r.pos]
	r.pos++
	return true
}

// fetch loads the page of records following the last one read.
func (r *BeaconReader) fetch(ctx context.Context) (err error) {
	args := make([]any, 0, len(r.captureIDs)+2)
	args = append(args, r.lastID)
	for _, id := range r.captureIDs {
		args = append(args, id)
	}
	args = append(args, r.batchSize)

	rows, err := r.db.QueryContext(ctx, r.query, args...)
	if err != nil {
		return fmt.Errorf("querying beacons: %w", err)
	}
	defer closeWithError(rows, &err)

	r.batch = nil
	r.pos = 0
	for rows.Next() {
		var data beaconData
		if err = rows.Scan(data.scanFields()...); err != nil {
			return fmt.Errorf("scanning beacon: %w", err)
		}
		r.batch = append(r.batch, data.record())
		r.lastID = data.ID
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterating beacons: %w", err)
	}

	r.eof = len(r.batch) < r.batchSize
	return nil
}

// Current returns the record read by the last successful call to Next.
func (r *BeaconReader) Current() *beacon.Record {
	return r.current
}

func (r *BeaconReader) Error() error {
	return r.err
}

// Close releases the reader. It is safe to call Close multiple times.
func (r *BeaconReader) Close() error {
	r.closed = true
	r.batch = nil
	r.current = nil
	return nil
}
