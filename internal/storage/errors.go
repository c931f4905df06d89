package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsConflict reports an exclusion-constraint violation: two bookings
// competing for overlapping (employee, time-range). This is the
// authoritative double-booking rejection; callers translate it into a
// "slot no longer available" outcome.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

// IsDuplicate reports a unique-constraint violation, used by the
// notification idempotency log where a duplicate insert means the send
// already happened.
func IsDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
