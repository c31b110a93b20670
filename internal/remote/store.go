// Package remote talks to the shared guest collection.
package remote

import (
	"context"

	"github.com/five82/potluck/internal/guest"
)

// Store is the capability the client needs from the shared collection. Any
// call may be slow or fail. Implementations need not be transactional.
type Store interface {
	// FetchAll returns every record. Order is not significant.
	FetchAll(ctx context.Context) ([]guest.Guest, error)
	// Insert adds a record; the store assigns id and created_at.
	Insert(ctx context.Context, draft guest.Draft) error
	// Update changes the fields set in patch on the record with id.
	Update(ctx context.Context, id guest.ID, patch guest.Patch) error
	// Delete removes the record with id.
	Delete(ctx context.Context, id guest.ID) error
}

// Ensure Client implements Store at compile time.
var _ Store = (*Client)(nil)
