package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func writeMigration(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const validSQL = "-- +goose Up\nCREATE TABLE t (id int);\n-- +goose Down\nDROP TABLE t;\n"

func TestValidateDirAcceptsWellFormed(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260101120000_create_things.sql", validSQL)

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateDirReportsAllProblems(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "badname.sql", validSQL)
	writeMigration(t, dir, "20260101120000_missing_down.sql", "-- +goose Up\nCREATE TABLE t (id int);\n")

	err := ValidateDir(dir)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", got, err)
	}
}

func TestValidateDirRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260101120000_first.sql", validSQL)
	writeMigration(t, dir, "20260101120000_second.sql", validSQL)

	err := ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate migration version") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Product Index!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_product_index.sql") {
		t.Fatalf("unexpected path %s", path)
	}

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("generated migration must validate: %v", err)
	}
}
