package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"absensi_backend/internals/features/attendance/model"
)

// SQLSTATE yang punya arti domain
const (
	pgUniqueViolation  = "23505"
	pgLockNotAvailable = "55P03"
	pgQueryCanceled    = "57014"
)

// mapError: error driver → taksonomi domain. Error domain diteruskan apa adanya.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		model.ErrDuplicate,
		model.ErrPresenceConflict,
		model.ErrNotFound,
		model.ErrValidation,
		model.ErrConcurrencyTimeout,
		model.ErrStoreFailure,
		model.ErrForbidden,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return model.ErrDuplicate
		case pgLockNotAvailable, pgQueryCanceled:
			return model.ErrConcurrencyTimeout
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return model.ErrConcurrencyTimeout
	}
	return &model.StoreError{Op: op, Err: err}
}
