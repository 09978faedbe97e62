package db

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// tableExists checks if a table exists in the database
func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func TestRunMigrationsForFS(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := RunMigrationsForFS(ctx, db, os.DirFS("testdata/migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	versions, err := MigrationStatus(ctx, db)
	if err != nil {
		t.Fatalf("Failed to get migration status: %v", err)
	}
	if len(versions) != 2 || versions[0] != "001" || versions[1] != "002" {
		t.Errorf("Expected versions [001 002], got %v", versions)
	}

	for _, table := range []string{"alpha", "beta"} {
		ok, err := tableExists(ctx, db, table)
		if err != nil {
			t.Fatalf("Failed to check for table %s: %v", table, err)
		}
		if !ok {
			t.Errorf("Expected table %s to exist", table)
		}
	}

	var note string
	if _, err := db.ExecContext(ctx, "INSERT INTO alpha (id) VALUES (1)"); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT note FROM alpha WHERE id = 1").Scan(&note); err != nil {
		t.Fatalf("Failed to read default: %v", err)
	}
	if note != "a; b" {
		t.Errorf("Expected default 'a; b', got %q", note)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("Failed to run migrations (pass %d): %v", i+1, err)
		}
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = '001'").Scan(&count); err != nil {
		t.Fatalf("Failed to count migration records: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 migration record, got %d", count)
	}
}

func TestMigrationStatus_BeforeMigrations(t *testing.T) {
	versions, err := MigrationStatus(context.Background(), openMemory(t))
	if err != nil {
		t.Fatalf("Failed to get migration status: %v", err)
	}
	if len(versions) != 0 {
		t.Errorf("Expected no migrations, got %v", versions)
	}
}

func TestSplitSQLStatements(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "simple",
			sql:  "SELECT 1; SELECT 2;",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "semicolon in string",
			sql:  "INSERT INTO t VALUES ('a;b'); SELECT 1",
			want: []string{"INSERT INTO t VALUES ('a;b')", "SELECT 1"},
		},
		{
			name: "semicolon in comments",
			sql:  "-- one; two\nSELECT 1; /* x; y */ SELECT 2;",
			want: []string{"-- one; two\nSELECT 1", "/* x; y */ SELECT 2"},
		},
		{
			name: "comment only",
			sql:  "SELECT 1;\n-- trailing; note\n",
			want: []string{"SELECT 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSQLStatements(tt.sql)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d statements, got %d: %q", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Statement %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}
