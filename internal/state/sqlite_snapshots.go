package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leaprdt/pkg/hyper"
)

// SaveSnapshot stores snap as the newest version of name.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, name string, snap *hyper.Snapshot) (*SnapshotInfo, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}
	if name == "" {
		return nil, fmt.Errorf("snapshot name is required")
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	info := &SnapshotInfo{
		ID:        generateID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Fields:    len(snap.Fields),
		Outputs:   snap.OutputCount(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, created_at, fields, outputs, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		info.ID, info.Name, info.CreatedAt.UnixNano(), info.Fields, info.Outputs, payload,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Debug("saved snapshot",
		slog.String("id", info.ID),
		slog.String("name", name),
		slog.Int("fields", info.Fields),
		slog.Int("outputs", info.Outputs))
	return info, nil
}

// LatestSnapshot returns the newest version of name.
func (s *SQLiteStore) LatestSnapshot(ctx context.Context, name string) (*hyper.Snapshot, *SnapshotInfo, error) {
	if s.db == nil {
		return nil, nil, ErrNotOpened
	}

	var (
		info    SnapshotInfo
		created int64
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, fields, outputs, payload
		FROM snapshots
		WHERE name = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, name).Scan(&info.ID, &info.Name, &created, &info.Fields, &info.Outputs, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	info.CreatedAt = time.Unix(0, created).UTC()

	var snap hyper.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, nil, fmt.Errorf("decode snapshot %s: %w", info.ID, err)
	}
	return &snap, &info, nil
}

// ListSnapshots lists stored snapshots, newest first.
func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, fields, outputs
		FROM snapshots
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info    SnapshotInfo
			created int64
		)
		if err := rows.Scan(&info.ID, &info.Name, &created, &info.Fields, &info.Outputs); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		info.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteSnapshots removes every version of name.
func (s *SQLiteStore) DeleteSnapshots(ctx context.Context, name string) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpened
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to delete snapshots: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted snapshots: %w", err)
	}
	s.logger.Debug("deleted snapshots", slog.String("name", name), slog.Int64("count", n))
	return n, nil
}
