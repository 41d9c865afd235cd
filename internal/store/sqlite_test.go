package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	return NewSQLite(db)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	if err := s.Set(ctx, "settings:123", `{"tags":"wolf"}`, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, "settings:123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != `{"tags":"wolf"}` {
		t.Fatalf("Get = (%q, %v)", got, ok)
	}
}

func TestSQLiteUpsert(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	s.Set(ctx, "k", "first", time.Hour)
	if err := s.Set(ctx, "k", "second", time.Hour); err != nil {
		t.Fatalf("Set (upsert): %v", err)
	}

	got, ok, _ := s.Get(ctx, "k")
	if !ok || got != "second" {
		t.Fatalf("Get = (%q, %v), want (\"second\", true)", got, ok)
	}
}

func TestSQLiteExpiredRowIsAbsent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	s.Set(ctx, "k", "v", 10*time.Second)

	now = now.Add(11 * time.Second)
	if _, ok, err := s.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expired Get = (ok=%v, err=%v), want absent", ok, err)
	}

	// The dead row was reaped; a fresh write must still succeed.
	if err := s.Set(ctx, "k", "v2", time.Hour); err != nil {
		t.Fatalf("Set after expiry: %v", err)
	}
	got, ok, _ := s.Get(ctx, "k")
	if !ok || got != "v2" {
		t.Fatalf("Get = (%q, %v), want (\"v2\", true)", got, ok)
	}
}

func TestSQLiteDelete(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	s.Set(ctx, "k", "v", time.Hour)
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("deleted key still present")
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
}
