package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert or update hits a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

const uniqueViolationCode = "23505"

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrDuplicate
	}
	return err
}

// checkID reports a malformed id as a missing row, which is what a lookup
// by that id would find.
func checkID(id string) error {
	if uuid.Validate(id) != nil {
		return pgx.ErrNoRows
	}
	return nil
}
