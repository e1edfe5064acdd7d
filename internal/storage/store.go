// Package storage persists captures and their beacon records in SQLite.
package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"
	"github.com/roman-kulish/wifi-density/internal/beacon"
)

// Store provides an interface for persisting analyzed captures. Every capture
// is one source run; its beacon records are stored against it.
type Store interface {
	// CreateCapture registers a processed capture file and returns its identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - source: Source label the records of this capture carry
	//   - path: Capture file the records were decoded from
	//   - decoder: Decoder used to read the capture ("native" or "tshark")
	//
	// Returns:
	//   - captureID: Unique identifier for the created capture
	//   - error: If creation fails or context is cancelled
	CreateCapture(ctx context.Context, source, path, decoder string) (captureID int64, err error)

	// Capture retrieves a capture by its ID.
	Capture(ctx context.Context, id int64) (*Capture, error)

	// Captures returns all captures ordered by ID.
	Captures(ctx context.Context) ([]*Capture, error)

	// StoreBeacons saves the beacon records of a capture. All records are
	// stored in a single transaction, inserted in batches.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - captureID: ID of the capture the records belong to
	//   - records: Records in pipeline order
	//
	// Returns:
	//   - error: If storage fails or context is cancelled
	StoreBeacons(ctx context.Context, captureID int64, records []beacon.Record) error

	// Beacons returns the records of a capture in the order they were stored.
	// The source of each record is the capture's source label.
	Beacons(ctx context.Context, captureID int64) ([]beacon.Record, error)

	// ReadBeacons returns a reader over stored records across captures.
	ReadBeacons(ctx context.Context, opts ...ReaderOption) (*BeaconReader, error)

	// Close releases all database connections and resources.
	// After Close is called, the store instance cannot be reused.
	// It is safe to call Close multiple times.
	Close() error
}
