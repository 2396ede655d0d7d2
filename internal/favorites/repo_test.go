package favorites

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"eventscout/pkg/database"
	"eventscout/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if err := database.MigrateFrom(db, "../../docs/schema.sql"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash)
		VALUES ('u1', 'alice', 'alice@example.com', 'x')
	`); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return db
}

func sampleEvent(id string) models.Event {
	return models.Event{
		ID:       id,
		Title:    "Jazz Night",
		Category: "Concerts",
		Date:     "Mar 1, 2026",
		Time:     "8:00 PM",
		Location: "Blue Note",
		Price:    "$25.00",
	}
}

func TestUpsertAndGet(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	fav := models.Favorite{UserID: "u1", EventID: "tm_1", Event: sampleEvent("tm_1")}
	if err := repo.Upsert(ctx, fav); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.Get(ctx, "u1", "tm_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("favorite not found after upsert")
	}
	if got.Event.Title != "Jazz Night" || got.Event.Price != "$25.00" {
		t.Fatalf("snapshot not preserved: %+v", got.Event)
	}
	if !got.Event.IsFavorite {
		t.Fatal("loaded favorite should be marked IsFavorite")
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}
}

func TestUpsertReplacesSnapshot(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	fav := models.Favorite{UserID: "u1", EventID: "tm_1", Event: sampleEvent("tm_1")}
	if err := repo.Upsert(ctx, fav); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	fav.Event.Price = "$30.00"
	if err := repo.Upsert(ctx, fav); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.Get(ctx, "u1", "tm_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Event.Price != "$30.00" {
		t.Fatalf("snapshot not replaced: %q", got.Event.Price)
	}

	_, total, err := repo.List(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Fatalf("upsert must not duplicate, total = %d", total)
	}
}

func TestListAndDelete(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"tm_1", "eb_2", "phq_3"} {
		if err := repo.Upsert(ctx, models.Favorite{UserID: "u1", EventID: id, Event: sampleEvent(id)}); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	items, total, err := repo.List(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 favorites, got total=%d len=%d", total, len(items))
	}

	ok, err := repo.Delete(ctx, "u1", "eb_2")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Fatal("delete should report a removed row")
	}

	ok, err = repo.Delete(ctx, "u1", "eb_2")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if ok {
		t.Fatal("second delete should be a no-op")
	}

	_, total, err = repo.List(ctx, "u1", 10, 0)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 favorites, got %d", total)
	}
}

func TestGetMissing(t *testing.T) {
	repo := NewRepo(newTestDB(t))

	got, err := repo.Get(context.Background(), "u1", "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing favorite, got %+v", got)
	}
}
