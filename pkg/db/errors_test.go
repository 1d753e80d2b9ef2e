package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "orders_order_number_key"}

	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation to match without constraint")
	}
	if !IsUniqueViolation(err, "orders_order_number_key") {
		t.Fatalf("expected unique violation to match named constraint")
	}
	if IsUniqueViolation(err, "other_constraint") {
		t.Fatalf("unexpected match for different constraint")
	}
}

func TestIsUniqueViolationOtherPGCode(t *testing.T) {
	err := &pgconn.PgError{Code: "23503", ConstraintName: "orders_buyer_id_fkey"}
	if IsUniqueViolation(err, "") {
		t.Fatalf("foreign key violation should not match")
	}
}

func TestIsUniqueViolationMessageFallback(t *testing.T) {
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: order_feedback.order_id"), "") {
		t.Fatalf("expected sqlite message to match")
	}
	if !IsUniqueViolation(fmt.Errorf("wrapped: %w", errors.New("duplicate key value violates unique constraint")), "") {
		t.Fatalf("expected postgres message to match")
	}
	if IsUniqueViolation(errors.New("record not found"), "") {
		t.Fatalf("unexpected match for unrelated error")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil error should not match")
	}
}
