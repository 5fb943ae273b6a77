package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"taskwell/internal/core/apperror"
)

// PostgreSQL error codes used for error translation.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// isForeignKeyViolation reports whether err is a FK violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// translateInsertError maps constraint violations to domain errors.
func translateInsertError(err error, entity, field, value string) error {
	if isUniqueViolation(err) {
		return apperror.NewDuplicate(entity, field, value).WithCause(err)
	}
	return err
}
