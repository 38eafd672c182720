package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolationCode is the PostgreSQL class 23 code for a violated
// unique constraint.
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err was caused by a unique-constraint
// conflict. Postgres surfaces a typed *pgconn.PgError; sqlite (used for
// local development and tests) only gives us the message text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
