package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")

	ErrTripValidation    = errors.New("trip validation failed")
	ErrTripNotFound      = errors.New("trip not found")
	ErrTripNotPending    = errors.New("trip is no longer pending")
	ErrTripIncomplete    = errors.New("trip has no itinerary yet")
	ErrExportUnavailable = errors.New("itinerary export unavailable")
	ErrSearchUnavailable = errors.New("trip search unavailable")

	ErrPlaceSearchUnavailable = errors.New("place search unavailable")
)

// ValidationError names the request field that failed. It matches
// ErrTripValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrTripValidation
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
