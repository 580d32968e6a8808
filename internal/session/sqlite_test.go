package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	sess, err := store.FindOrCreateActiveSession(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.AppendTurn(ctx, sess.ID, Turn{
		Role:     "user",
		Message:  "weather in Natal?",
		Turn:     1,
		Metadata: map[string]any{"location": "Natal"},
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if err := store.UpdateSessionTitle(ctx, sess.ID, "Tempo em Natal"); err != nil {
		t.Fatalf("title update failed: %v", err)
	}

	got, err := store.FindSessionByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.Title != "Tempo em Natal" {
		t.Errorf("unexpected title: %q", got.Title)
	}
	if len(got.Chats) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(got.Chats))
	}
	if got.Chats[0].Message != "weather in Natal?" {
		t.Errorf("unexpected message: %q", got.Chats[0].Message)
	}
	if got.Chats[0].Metadata["location"] != "Natal" {
		t.Errorf("metadata not preserved: %v", got.Chats[0].Metadata)
	}
}

func TestSQLiteReusesMostRecentSession(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	first, err := store.FindOrCreateActiveSession(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.FindOrCreateActiveSession(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same session, got %s and %s", first.ID, second.ID)
	}
}

func TestSQLiteUnknownSession(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	if _, err := store.FindSessionByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateSessionTitle(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
