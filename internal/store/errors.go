// Package store defines the error taxonomy shared by all repositories:
// not-found, constraint violations, transport failures, and pre-call
// validation errors. Handlers map these to HTTP status codes.
package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or malformed required field, caught
// before any network call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Msg)
}

// ConstraintError reports a write rejected by the backend (unique or
// referential integrity violation).
type ConstraintError struct {
	Code string // postgres error code
	Err  error
}

func (e *ConstraintError) Error() string { return "constraint violation: " + e.Err.Error() }
func (e *ConstraintError) Unwrap() error { return e.Err }

// TransportError reports a network or backend failure on a gateway call.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// WrapQuery classifies an error from a pgx query into the taxonomy.
// nil passes through.
func WrapQuery(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503", "23505", "23514": // fk, unique, check
			return &ConstraintError{Code: pgErr.Code, Err: err}
		}
	}
	return &TransportError{Err: err}
}

// IsNotFound reports whether err is the not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConstraint reports whether err is a constraint violation.
func IsConstraint(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}
