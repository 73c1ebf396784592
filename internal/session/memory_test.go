package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, err := store.Create(ctx, "stu-1", "class-1", 8*time.Hour)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("empty token")
	}

	got, err := store.Get(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.StudentID != "stu-1" || got.ClassID != "class-1" {
		t.Fatalf("Get = %+v", got)
	}
}

func TestMemoryStoreUnknownToken(t *testing.T) {
	store := NewMemoryStore()

	got, err := store.Get(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown token, got %+v", got)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	sess, err := store.Create(ctx, "stu-1", "class-1", 8*time.Hour)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	current = current.Add(7 * time.Hour)
	if got, _ := store.Get(ctx, sess.Token); got == nil {
		t.Fatal("session expired too early")
	}

	current = current.Add(2 * time.Hour)
	got, err := store.Get(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatal("expired session must read as absent")
	}
	// 惰性删除后条目应该已经不在了
	if store.Len() != 0 {
		t.Fatalf("Len = %d after lazy removal", store.Len())
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, "stu", "class", time.Hour); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := store.Create(ctx, "stu", "class", 10*time.Hour); err != nil {
		t.Fatalf("Create: %v", err)
	}

	current = current.Add(2 * time.Hour)
	if removed := store.Sweep(); removed != 3 {
		t.Fatalf("Sweep removed %d, want 3", removed)
	}
	if store.Len() != 1 {
		t.Fatalf("Len = %d, want 1", store.Len())
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, _ := store.Create(ctx, "stu-1", "class-1", time.Hour)
	if err := store.Delete(ctx, sess.Token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, sess.Token); got != nil {
		t.Fatal("deleted session still readable")
	}
}
