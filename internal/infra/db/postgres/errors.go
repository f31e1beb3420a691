package postgres

import (
	"errors"

	"github.com/jackc/pgconn"

	"travel-ai-planner/internal/domain"
)

// dbErr wraps a driver failure as DATABASE_OPERATION_FAILED, attaching the
// Postgres error code when one is available.
func dbErr(msg string, err error) error {
	e := domain.NewError(domain.CodeDatabaseOperation, msg, err)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		e.WithContext("pg_code", pgErr.Code)
	}
	return e
}
