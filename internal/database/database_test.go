package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/robalobadob/noterecall/assets"
)

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "data", "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := Migrate(db, assets.Migrations()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 recorded migration, got %d", n)
	}
	for _, table := range []string{"users", "notes", "sessions", "games", "daily_results"} {
		if _, err := db.Exec(`SELECT 1 FROM ` + table + ` LIMIT 1`); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateOrderAndFailure(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"002_b.sql": {Data: []byte(`INSERT INTO t(v) VALUES ('b');`)},
		"001_a.sql": {Data: []byte(`CREATE TABLE t (v TEXT);`)},
		"notes.txt": {Data: []byte(`ignored`)},
	}
	if err := Migrate(db, fsys); err != nil {
		t.Fatal(err)
	}
	var v string
	if err := db.QueryRow(`SELECT v FROM t`).Scan(&v); err != nil || v != "b" {
		t.Fatalf("expected row b, got %q (%v)", v, err)
	}

	fsys["003_bad.sql"] = &fstest.MapFile{Data: []byte(`NOT SQL;`)}
	if err := Migrate(db, fsys); err == nil {
		t.Error("expected error for invalid migration")
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil || n != 2 {
		t.Fatalf("failed migration must not be recorded, got %d (%v)", n, err)
	}

	fsys["003_bad.sql"] = &fstest.MapFile{Data: []byte(`INSERT INTO t(v) VALUES ('c');`)}
	if err := Migrate(db, fsys); err != nil {
		t.Fatalf("fixed migration should apply on the next run: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM t`).Scan(&n); err != nil || n != 2 {
		t.Errorf("expected 2 rows after retry, got %d (%v)", n, err)
	}
}
