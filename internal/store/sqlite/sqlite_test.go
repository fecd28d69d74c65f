package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julien-lin/UniversalPWA-sub002/internal/store"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLatestGeneration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	g := &store.Generation{
		ProjectRoot: "/proj",
		Version:     "abc123",
		Timestamp:   1700000000000,
		FileHashes:  map[string]string{"/proj/app.js": "deadbeef"},
		SWPath:      "/proj/dist/sw.js",
		Count:       12,
		Size:        34567,
	}
	if err := db.SaveGeneration(ctx, g); err != nil {
		t.Fatalf("SaveGeneration: %v", err)
	}
	if g.ID == "" {
		t.Error("SaveGeneration did not assign an ID")
	}
	if g.CreatedAt.IsZero() {
		t.Error("SaveGeneration did not stamp CreatedAt")
	}

	got, err := db.LatestGeneration(ctx, "/proj")
	if err != nil {
		t.Fatalf("LatestGeneration: %v", err)
	}
	if got.ID != g.ID || got.Version != "abc123" || got.Count != 12 || got.Size != 34567 {
		t.Errorf("round trip = %+v", got)
	}
	if got.FileHashes["/proj/app.js"] != "deadbeef" {
		t.Errorf("file hashes = %v", got.FileHashes)
	}
}

func TestLatestGenerationNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.LatestGeneration(context.Background(), "/never-generated")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want store.ErrNotFound", err)
	}
}

func TestLatestGenerationPicksNewest(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, version := range []string{"v1", "v2", "v3"} {
		g := &store.Generation{
			ProjectRoot: "/proj",
			Version:     version,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if err := db.SaveGeneration(ctx, g); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.LatestGeneration(ctx, "/proj")
	if err != nil {
		t.Fatalf("LatestGeneration: %v", err)
	}
	if got.Version != "v3" {
		t.Errorf("latest version = %q, want v3", got.Version)
	}
}

func TestListGenerations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		g := &store.Generation{
			ProjectRoot: "/proj",
			Version:     "v" + string(rune('1'+i)),
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if err := db.SaveGeneration(ctx, g); err != nil {
			t.Fatal(err)
		}
	}
	// A different project must not leak into the listing.
	other := &store.Generation{ProjectRoot: "/other", Version: "x", CreatedAt: base}
	if err := db.SaveGeneration(ctx, other); err != nil {
		t.Fatal(err)
	}

	got, err := db.ListGenerations(ctx, "/proj", 3)
	if err != nil {
		t.Fatalf("ListGenerations: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("listed %d generations, want 3", len(got))
	}
	if got[0].Version != "v5" || got[2].Version != "v3" {
		t.Errorf("listing order = %q .. %q, want newest first", got[0].Version, got[2].Version)
	}

	all, err := db.ListGenerations(ctx, "/proj", 0)
	if err != nil {
		t.Fatalf("ListGenerations: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("default limit listed %d generations, want 5", len(all))
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	db, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g := &store.Generation{ProjectRoot: "/proj", Version: "v1"}
	if err := db.SaveGeneration(ctx, g); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	// The schema bootstrap runs on every open and must be idempotent.
	db, err = New(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	got, err := db.LatestGeneration(ctx, "/proj")
	if err != nil {
		t.Fatalf("LatestGeneration after reopen: %v", err)
	}
	if got.Version != "v1" {
		t.Errorf("version = %q, want v1", got.Version)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
