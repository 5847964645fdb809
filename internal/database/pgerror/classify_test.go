package pgerror

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify_Nil(t *testing.T) {
	if Classify(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestClassify_NoRows(t *testing.T) {
	err := Classify(pgx.ErrNoRows)
	if !IsNotFound(err) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestClassify_PgCodes(t *testing.T) {
	tests := []struct {
		code string
		want Category
	}{
		{"23505", CategoryConflict},
		{"23503", CategoryInvalidReference},
		{"23502", CategoryValidation},
		{"40001", CategoryTransient},
		{"08006", CategoryTransient},
		{"XX000", CategoryInternal},
	}

	for _, tt := range tests {
		err := Classify(&pgconn.PgError{Code: tt.code, ConstraintName: "c"})
		var storeErr *StoreError
		if !errors.As(err, &storeErr) {
			t.Fatalf("code %s: expected StoreError, got %T", tt.code, err)
		}
		if storeErr.Category != tt.want {
			t.Fatalf("code %s: expected %v, got %v", tt.code, tt.want, storeErr.Category)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	first := Classify(&pgconn.PgError{Code: "23505"})
	second := Classify(first)
	if first != second {
		t.Fatalf("expected already-classified error to pass through")
	}
}

func TestStoreError_Retriable(t *testing.T) {
	transient := Classify(&pgconn.PgError{Code: "40001"})
	var storeErr *StoreError
	if !errors.As(transient, &storeErr) || !storeErr.Retriable() {
		t.Fatalf("expected transient error to be retriable")
	}

	conflict := Classify(&pgconn.PgError{Code: "23505"})
	if !errors.As(conflict, &storeErr) {
		t.Fatalf("expected StoreError")
	}
	if storeErr.Retriable() {
		t.Fatalf("conflict must not be retriable")
	}
}
