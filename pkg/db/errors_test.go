package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	err := errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`)

	if !IsUniqueViolation(err, "idx_users_email") {
		t.Error("expected a match on the named constraint")
	}
	if IsUniqueViolation(err, "idx_orders_razorpay_order_id") {
		t.Error("a different constraint must not match")
	}
	if !IsUniqueViolation(err, "") {
		t.Error("expected a match on the generic duplicate key text")
	}
	if IsUniqueViolation(nil, "idx_users_email") {
		t.Error("nil error must not match")
	}
}
