package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the domain layer distinguishes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// MapError converts sql.ErrNoRows to notFound and unique violations to
// duplicate. Foreign key violations also map to notFound since they mean a
// referenced row is absent. Anything else is returned as is.
func MapError(err, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	}

	switch SQLState(err) {
	case codeUniqueViolation:
		return duplicate
	case codeForeignKeyViolation:
		return notFound
	}
	return err
}

// SQLState returns the PostgreSQL error code carried by err, or "".
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
