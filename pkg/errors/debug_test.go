package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpExtractsPgxDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_users_email",
		TableName:      "users",
		ColumnName:     "email",
		Detail:         "Key (email)=(a@b.com) already exists.",
		Message:        "duplicate key value violates unique constraint",
	}
	wrapped := Wrap(CodeConflict, fmt.Errorf("create user: %w", pgErr), "registering")

	d := Dump(wrapped)
	if d.Code != CodeConflict {
		t.Fatalf("code = %s", d.Code)
	}
	if d.PGCode != "23505" {
		t.Fatalf("pg code = %s", d.PGCode)
	}
	if d.PGConstraint != "idx_users_email" {
		t.Fatalf("pg constraint = %s", d.PGConstraint)
	}
	if d.PGTable != "users" {
		t.Fatalf("pg table = %s", d.PGTable)
	}
	if d.PGColumn != "email" {
		t.Fatalf("pg column = %s", d.PGColumn)
	}
	if d.PGDetail == "" || d.PGMessage == "" {
		t.Fatalf("expected detail and message, got %+v", d)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected unwrap chain, got %v", d.Chain)
	}
}

func TestDumpExtractsPqDiagnostics(t *testing.T) {
	pqErr := &pq.Error{
		Code:       "23502",
		Table:      "orders",
		Column:     "address_id",
		Constraint: "orders_address_id_fkey",
		Message:    "null value in column",
	}

	d := Dump(fmt.Errorf("save order: %w", pqErr))
	if d.PGCode != "23502" {
		t.Fatalf("pg code = %s", d.PGCode)
	}
	if d.PGColumn != "address_id" {
		t.Fatalf("pg column = %s", d.PGColumn)
	}
	if d.PGTable != "orders" {
		t.Fatalf("pg table = %s", d.PGTable)
	}
}

func TestDumpPlainError(t *testing.T) {
	d := Dump(stdErrors.New("boom"))
	if d.TopMessage != "boom" {
		t.Fatalf("top message = %s", d.TopMessage)
	}
	if d.PGCode != "" || d.PGColumn != "" {
		t.Fatalf("plain error must carry no pg fields, got %+v", d)
	}
}

func TestIsLockContentionPgCodes(t *testing.T) {
	for _, code := range []string{pgCodeLockNotAvailable, pgCodeDeadlockDetected} {
		err := fmt.Errorf("checkout: %w", &pgconn.PgError{Code: code})
		if !IsLockContention(err) {
			t.Fatalf("code %s must classify as lock contention", code)
		}
	}
	if IsLockContention(fmt.Errorf("checkout: %w", &pgconn.PgError{Code: "23505"})) {
		t.Fatal("unique violation must not classify as lock contention")
	}
}
