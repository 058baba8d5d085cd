package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMigrationFile(t *testing.T, dir, name, sql string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644); err != nil {
		t.Fatalf("write migration file: %v", err)
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "002_blocked_slots.sql", "CREATE TABLE blocked_slots ();")
	writeMigrationFile(t, dir, "001_core.sql", "CREATE TABLE bookings ();")
	writeMigrationFile(t, dir, "010_indexes.sql", "CREATE INDEX x ON bookings (date);")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 || migrations[2].Version != 10 {
		t.Errorf("expected versions [1 2 10], got [%d %d %d]",
			migrations[0].Version, migrations[1].Version, migrations[2].Version)
	}
	if migrations[0].SQL != "CREATE TABLE bookings ();" {
		t.Errorf("unexpected SQL for first migration: %q", migrations[0].SQL)
	}
}

func TestLoadMigrations_SkipsNonNumericAndNonSQL(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "001_core.sql", "SELECT 1;")
	writeMigrationFile(t, dir, "README.md", "not a migration")
	writeMigrationFile(t, dir, "notes_001.sql", "SELECT 2;")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migrations))
	}
	if migrations[0].Name != "001_core.sql" {
		t.Errorf("expected 001_core.sql, got %s", migrations[0].Name)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
