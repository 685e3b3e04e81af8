package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyRunsOncePerFile(t *testing.T) {
	db := openTestDB(t)
	migrations := fstest.MapFS{
		"migrations/001_init.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE widgets (id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE widgets;\n")},
		"migrations/002_seed.sql": {Data: []byte("INSERT INTO widgets (id) VALUES ('a');")},
		"migrations/README.md":    {Data: []byte("ignored")},
	}
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Apply(ctx, db, migrations, "migrations"); err != nil {
			t.Fatalf("apply #%d: %v", i+1, err)
		}
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM widgets").Scan(&rows); err != nil {
		t.Fatalf("count widgets: %v", err)
	}
	if rows != 1 {
		t.Fatalf("widgets = %d, want 1", rows)
	}
	var applied int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + migrationTable).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 2 {
		t.Fatalf("applied = %d, want 2", applied)
	}
}

func TestApplyDetectsEditedMigration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	first := fstest.MapFS{"001.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")}}
	if err := Apply(ctx, db, first, ""); err != nil {
		t.Fatalf("apply: %v", err)
	}
	edited := fstest.MapFS{"001.sql": {Data: []byte("CREATE TABLE a (id INTEGER, name TEXT);")}}
	err := Apply(ctx, db, edited, "")
	var mismatch *ChecksumMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want ChecksumMismatchError", err)
	}
	if mismatch.Name != "001.sql" {
		t.Fatalf("name = %q, want 001.sql", mismatch.Name)
	}
}

func TestApplyRequiresDB(t *testing.T) {
	if err := Apply(context.Background(), nil, fstest.MapFS{}, ""); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestUpSection(t *testing.T) {
	content := "-- header\n-- +migrate Up\nCREATE TABLE x (id INTEGER);\n-- +migrate Down\nDROP TABLE x;\n"
	got := strings.TrimSpace(UpSection(content))
	if got != "CREATE TABLE x (id INTEGER);" {
		t.Fatalf("up = %q", got)
	}
	if UpSection("SELECT 1;") != "SELECT 1;" {
		t.Fatal("expected whole content without markers")
	}
}

func TestIsAlreadyExists(t *testing.T) {
	if !IsAlreadyExists(errors.New("table x already exists")) {
		t.Fatal("expected already exists match")
	}
	if IsAlreadyExists(errors.New("syntax error")) {
		t.Fatal("unexpected match")
	}
}
