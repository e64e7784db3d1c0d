package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate: (person, day) sudah punya record jenis yang sama. Hasil rutin, bukan fault.
	ErrDuplicate = errors.New("already recorded")
	// ErrPresenceConflict: excuse ditolak karena presence hari itu sudah ada.
	ErrPresenceConflict = errors.New("presence already recorded for this day")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	// ErrConcurrencyTimeout bisa di-retry oleh caller (submit ulang seluruhnya).
	ErrConcurrencyTimeout = errors.New("concurrency timeout, retry the submission")
	ErrStoreFailure       = errors.New("store unavailable")
	ErrForbidden          = errors.New("forbidden")
)

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError membungkus error driver supaya errors.Is(err, ErrStoreFailure) true
// tanpa kehilangan penyebab aslinya.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}
