package permalinks

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", "file:permalinks_test?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBunStoreSetGetOverwrite(t *testing.T) {
	db := newTestDB(t)
	store := NewBunStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, ok, err := store.Get(ctx, 42); err != nil || ok {
		t.Fatalf("expected empty store, got present=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, 42, "https://example.com/first/"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, 42, "https://example.com/second/"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	permalink, ok, err := store.Get(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("get: present=%v err=%v", ok, err)
	}
	if permalink != "https://example.com/second/" {
		t.Fatalf("expected last write to win, got %q", permalink)
	}
}
