package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Pari658/Expense-Management/internal/domain/repository"
)

const (
	uniqueViolation    = "23505"
	checkViolation     = "23514"
	numericOutOfRange  = "22003"
	invalidTextReprErr = "22P02" // e.g. a malformed uuid in a lookup
)

// mapErr translates driver errors into repository errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return repository.ErrDuplicate
		case invalidTextReprErr:
			return repository.ErrNotFound
		case checkViolation, numericOutOfRange:
			return repository.ErrConstraint
		}
	}
	return err
}
