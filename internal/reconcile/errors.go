package reconcile

import (
	"errors"
	"fmt"

	"github.com/five82/potluck/internal/guest"
)

var (
	// ErrNotFound is wrapped in a ValidationError when an update or remove
	// names a record the cache does not hold.
	ErrNotFound = errors.New("record not found")
	// ErrUnconfirmed is wrapped in a ValidationError when an update or remove
	// targets a record whose create has not been confirmed yet.
	ErrUnconfirmed = errors.New("record not confirmed yet")
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("engine closed")
)

// ValidationError rejects input before any cache write or remote call.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// RemoteWriteError reports an insert, update or delete that failed after the
// optimistic cache write was applied.
type RemoteWriteError struct {
	Kind Kind
	ID   guest.ID
	Err  error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("%s %s: remote write failed: %v", e.Kind, e.ID, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// RemoteReadError reports a failed refresh. The cache keeps its previous
// records.
type RemoteReadError struct {
	Err error
}

func (e *RemoteReadError) Error() string { return "refresh failed: " + e.Err.Error() }
func (e *RemoteReadError) Unwrap() error { return e.Err }
