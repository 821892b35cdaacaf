package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// IsNotFound reports whether err means the query matched no rows.
// Profile lookups use this to distinguish a missing account (degrade to
// placeholder) from a real database fault.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
