package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nerrad567/switchboard/internal/channel"
	"github.com/nerrad567/switchboard/internal/infrastructure/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewStore(db.DB)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []channel.ChannelState{
		{Name: "d0", Asserted: true},
		{Name: "d1", Asserted: false},
	}
	second := []channel.ChannelState{
		{Name: "d0", Asserted: false},
		{Name: "d1", Asserted: false},
	}

	if err := store.RecordSnapshot(ctx, first); err != nil {
		t.Fatalf("RecordSnapshot() error = %v", err)
	}
	if err := store.RecordSnapshot(ctx, second); err != nil {
		t.Fatalf("RecordSnapshot() error = %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(Recent()) = %d, want 2", len(entries))
	}

	// Newest first.
	if entries[0].Snapshot["d0"] != "off" {
		t.Errorf("newest entry d0 = %q, want %q", entries[0].Snapshot["d0"], "off")
	}
	if entries[1].Snapshot["d0"] != "on" {
		t.Errorf("older entry d0 = %q, want %q", entries[1].Snapshot["d0"], "on")
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("CreatedAt is zero, want populated timestamp")
	}
}

func TestRecent_Empty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len(Recent()) = %d, want 0", len(entries))
	}
}

func TestRecent_LimitClamped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	states := []channel.ChannelState{{Name: "d0", Asserted: false}}
	for i := 0; i < 5; i++ {
		if err := store.RecordSnapshot(ctx, states); err != nil {
			t.Fatalf("RecordSnapshot() error = %v", err)
		}
	}

	// Zero and negative limits fall back to the default.
	entries, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent(0) error = %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("len(Recent(0)) = %d, want 5", len(entries))
	}

	entries, err = store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent(2) error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("len(Recent(2)) = %d, want 2", len(entries))
	}
}
