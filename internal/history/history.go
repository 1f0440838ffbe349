package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/switchboard/internal/channel"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// Entry is one recorded snapshot.
type Entry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// Snapshot maps channel names to their "on"/"off" tokens at record time.
	Snapshot map[string]string `json:"snapshot"`

	// CreatedAt is the timestamp of the record (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Store records published snapshots in SQLite for audit.
//
// The store is write-mostly: the control loop only appends. Recorded
// snapshots are never replayed into outputs; desired state deliberately
// does not survive a power cycle.
type Store struct {
	db *sql.DB
}

// NewStore creates a history store over an open SQLite connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the history schema if it does not exist.
// Called once at startup before the store is used.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshot_history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot   TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("creating snapshot_history table: %w", err)
	}
	return nil
}

// RecordSnapshot appends one snapshot. Satisfies controller.SnapshotRecorder.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - states: The snapshot as published, in registry order
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (s *Store) RecordSnapshot(ctx context.Context, states []channel.ChannelState) error {
	snapshot := make(map[string]string, len(states))
	for _, state := range states {
		snapshot[state.Name] = channel.FormatToken(state.Asserted)
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO snapshot_history (snapshot) VALUES (?)",
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot history: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []Entry: History entries ordered by id DESC
//   - error: nil on success, otherwise the underlying query error
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, snapshot, created_at
		 FROM snapshot_history
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only iteration

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var payload string
		if err := rows.Scan(&entry.ID, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot history row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &entry.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshalling snapshot for row %d: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot history: %w", err)
	}

	return entries, nil
}
