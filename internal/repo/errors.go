package repo

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a record does not exist for the given
	// owner. A record owned by someone else is reported the same way.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email that is
	// already taken (case-insensitive).
	ErrDuplicateEmail = errors.New("email already registered")
)

// isUniqueViolation reports whether err is a postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
