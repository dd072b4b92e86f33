package database

import (
	"path/filepath"
	"testing"
)

func TestInitDBCreatesTables(t *testing.T) {
	t.Parallel()

	d, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer d.Close()

	for _, table := range []string{"jobs", "batches"} {
		var name string
		err := d.DB.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %q missing: %v", table, err)
		}
	}
}

func TestInitDBIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		d, err := InitDB(path)
		if err != nil {
			t.Fatalf("InitDB run %d: %v", i, err)
		}
		if err := d.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
}
