// Package state persists fitted HyperTransformer snapshots in SQLite so that
// a model fitted by one command can transform and reverse in later ones.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/leaprdt/pkg/hyper"
)

var (
	// ErrSnapshotNotFound is returned when no snapshot is stored under a name.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrNotOpened is returned by store operations before Open succeeds.
	ErrNotOpened = errors.New("database not opened")
)

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Fields    int       `json:"fields"`
	Outputs   int       `json:"outputs"`
}

// Store is the snapshot persistence contract.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema(ctx context.Context) error

	// SaveSnapshot stores a new version of the named snapshot.
	SaveSnapshot(ctx context.Context, name string, snap *hyper.Snapshot) (*SnapshotInfo, error)
	// LatestSnapshot returns the most recently saved version of a snapshot.
	LatestSnapshot(ctx context.Context, name string) (*hyper.Snapshot, *SnapshotInfo, error)
	// ListSnapshots lists every stored version, newest first.
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
	// DeleteSnapshots removes every version of a snapshot and returns how many
	// were removed.
	DeleteSnapshots(ctx context.Context, name string) (int64, error)
}

var _ Store = (*SQLiteStore)(nil)
