package db

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable marks failures where the backing store cannot be
// reached. Callers treat it as "no prior knowledge" rather than failing the
// surrounding workflow.
var ErrStorageUnavailable = errors.New("event store unavailable")

// unavailable wraps a low-level store error so errors.Is(err,
// ErrStorageUnavailable) holds while the original cause stays inspectable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorageUnavailable, err))
}
