package attendance

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicate is returned by Store.Insert when (owner, day) already exists.
	ErrDuplicate = errors.New("attendance: record exists for owner and day")
	// ErrNotFound is returned when no matching (open) record exists.
	ErrNotFound = errors.New("attendance: record not found")
)

// Store persists attendance records. Implementations must enforce uniqueness
// of (owner, day) themselves; the service never checks before inserting.
type Store interface {
	// Insert creates rec, failing with ErrDuplicate on an (owner, day) clash.
	Insert(ctx context.Context, rec Record) (Record, error)
	// FindDay returns the owner's record for day or ErrNotFound.
	FindDay(ctx context.Context, owner, day string) (Record, error)
	// Close sets logout and hours on the record only if it is still open.
	// A closed or missing record yields ErrNotFound.
	Close(ctx context.Context, id string, logout time.Time, hours float64) (Record, error)
	// ListRecent returns up to limit records for owner, newest day first.
	ListRecent(ctx context.Context, owner string, limit int) ([]Record, error)
	// CountBetween counts owner's records with fromDay <= day <= toDay.
	CountBetween(ctx context.Context, owner, fromDay, toDay string) (int, error)
	// Reset deletes every record. Administrative use only.
	Reset(ctx context.Context) (int64, error)
	// EnsureIndexes creates the uniqueness constraint and lookup indexes.
	EnsureIndexes(ctx context.Context) error
}
