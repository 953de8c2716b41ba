package kvstore

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ErrStorageUnavailable wraps every backend failure
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store is a persistent string-to-string store with exact key lookup only.
type Store interface {
	// Set stores value under key, overwriting prior contents.
	Set(ctx context.Context, key, value string) error
	// Get returns the value for key; ok is false if the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Close() error
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrStorageUnavailable, op, key, err)
}
