package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes translated into domain errors.
const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
	pgErrCheckViolation      = "23514"
)

// translate maps driver errors onto domain sentinels. notFound replaces
// pgx.ErrNoRows, conflict replaces unique violations and reference replaces
// foreign key violations. A nil replacement leaves the error untouched.
func translate(err error, notFound, conflict, reference error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			if conflict != nil {
				return conflict
			}
		case pgErrForeignKeyViolation:
			if reference != nil {
				return reference
			}
		}
	}
	return err
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCheckViolation
}
