package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"luxeleads/internal/store"
)

// Postgres error codes we translate.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	pgFKViolation     = "23503"
)

// ErrEmptyPatch is returned by Update when there is nothing to write.
var ErrEmptyPatch = errors.New("update patch is empty")

// translateError maps constraint violations to store sentinels.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
	case pgCheckViolation, pgFKViolation:
		return fmt.Errorf("%w: %s", store.ErrInvalidValue, pgErr.ConstraintName)
	}
	return err
}
