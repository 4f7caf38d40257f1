package credentials

import (
	"context"
	"errors"
)

// ErrSkipUpdate is returned by an UpdateFunc to leave the store untouched.
var ErrSkipUpdate = errors.New("skip update")

// UpdateFunc computes the next snapshot from the current one.
type UpdateFunc func(current Session) (Session, error)

// Store persists the session across restarts. Each call is atomic with
// respect to the others; plain writes are last-write-wins.
type Store interface {
	// Write merges the non-empty fields into the stored snapshot.
	Write(ctx context.Context, fields Session) error
	// Read returns the current snapshot.
	Read(ctx context.Context) (Session, error)
	// Clear removes every key. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
	// Update replaces the snapshot with fn's result in one critical section.
	Update(ctx context.Context, fn UpdateFunc) error
}
