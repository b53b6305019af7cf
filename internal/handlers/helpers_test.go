package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_code"}

	constraint, ok := uniqueViolation(fmt.Errorf("create order: %w", pgErr))
	if !ok {
		t.Fatal("wrapped 23505 not recognized")
	}
	if constraint != "idx_orders_code" {
		t.Errorf("constraint = %q", constraint)
	}

	if _, ok := uniqueViolation(&pgconn.PgError{Code: "23503"}); ok {
		t.Error("foreign key violation must not count as unique violation")
	}
	if _, ok := uniqueViolation(errors.New("plain error")); ok {
		t.Error("plain error must not count as unique violation")
	}
	if _, ok := uniqueViolation(nil); ok {
		t.Error("nil error must not count as unique violation")
	}
}
