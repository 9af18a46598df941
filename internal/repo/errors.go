package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func translate(op, table string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	case isUniqueViolation(err):
		return &Error{Op: op, Table: table, Err: fmt.Errorf("%w: %w", ErrConflict, err)}
	default:
		return &Error{Op: op, Table: table, Err: err}
	}
}
