// Package store persists snapshots of the history log.
package store

import (
	"context"

	"github.com/cockroachdb/errors"

	"stopwatch_tui/internal/timelog"
)

// ErrCorrupt is returned by Load when the stored snapshot cannot be decoded.
// Callers treat it as if nothing had been stored.
var ErrCorrupt = errors.New("stored history is corrupt")

// Store saves and restores the full history log.
type Store interface {
	// Save replaces the stored snapshot with records.
	Save(ctx context.Context, records []timelog.TimingRecord) error

	// Load returns the stored snapshot in chronological order, or nil when
	// nothing has been stored.
	Load(ctx context.Context) ([]timelog.TimingRecord, error)

	// Clear drops the stored snapshot.
	Clear(ctx context.Context) error

	Close() error
}
