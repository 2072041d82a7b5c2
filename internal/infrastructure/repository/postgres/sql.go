package postgres

import (
	"database/sql"
	"errors"
)

// isNotFound reports whether a query returned no rows. Repositories
// translate this into the (value, false, nil) miss convention.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
