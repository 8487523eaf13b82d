package database

import (
	"path/filepath"
	"testing"
)

func TestNewDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "diet.db")

	db, err := NewDB(path)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"diets", "fetch_metrics"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table '%s' to exist: %v", table, err)
		}
	}

	var index string
	err = db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_diets_session'`).Scan(&index)
	if err != nil {
		t.Errorf("Expected unique session index on diets: %v", err)
	}

	// Running migrations again is a no-op.
	if err := RunMigrations(path); err != nil {
		t.Errorf("Expected repeated migrations to succeed, got %v", err)
	}
}
