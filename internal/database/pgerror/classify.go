// Package pgerror maps raw Postgres errors onto the store-error categories
// the rest of the application reasons about: whether a failed write is the
// caller's fault (conflict, bad reference, invalid data), a missing record,
// or a transient fault worth retrying.
package pgerror

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Category int

const (
	CategoryInternal Category = iota
	CategoryNotFound
	CategoryConflict
	CategoryInvalidReference
	CategoryValidation
	CategoryTransient
)

func (c Category) String() string {
	switch c {
	case CategoryNotFound:
		return "not_found"
	case CategoryConflict:
		return "conflict"
	case CategoryInvalidReference:
		return "invalid_reference"
	case CategoryValidation:
		return "validation"
	case CategoryTransient:
		return "transient"
	default:
		return "internal"
	}
}

// StoreError carries the classified category alongside the original error.
type StoreError struct {
	Category   Category
	Constraint string
	Cause      error
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	msg := "store error (" + e.Category.String() + ")"
	if e.Constraint != "" {
		msg += " constraint=" + e.Constraint
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Retriable reports whether the caller may reasonably retry the operation.
func (e *StoreError) Retriable() bool {
	return e != nil && e.Category == CategoryTransient
}

// Classify wraps err in a StoreError. Nil passes through.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return &StoreError{Category: CategoryNotFound, Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &StoreError{
			Category:   categoryForCode(pgErr.Code),
			Constraint: pgErr.ConstraintName,
			Cause:      err,
		}
	}

	return &StoreError{Category: CategoryInternal, Cause: err}
}

func categoryForCode(code string) Category {
	switch code {
	case "23505": // unique_violation
		return CategoryConflict
	case "23503": // foreign_key_violation
		return CategoryInvalidReference
	case "23502", "23514", "22001", "22003", "22P02": // null/check/data faults
		return CategoryValidation
	case "40001", "40P01", "57P01", "55P03": // serialization, deadlock, shutdown, lock
		return CategoryTransient
	}

	// Connection-class errors are transient by definition.
	if strings.HasPrefix(code, "08") {
		return CategoryTransient
	}
	return CategoryInternal
}

// Is helpers keep call sites short.

func IsNotFound(err error) bool        { return hasCategory(err, CategoryNotFound) }
func IsConflict(err error) bool        { return hasCategory(err, CategoryConflict) }
func IsInvalidRef(err error) bool      { return hasCategory(err, CategoryInvalidReference) }
func IsTransient(err error) bool       { return hasCategory(err, CategoryTransient) }

func hasCategory(err error, c Category) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Category == c
	}
	return false
}
