// Package reconcile keeps a local cache of the shared guest list in step with
// the remote store.
//
// # Overview
//
// The Engine is the only writer of its cache.Store. User intents are applied
// to the cache immediately (optimistically) and then sent to the remote
// store. Every successful write is followed by a full refresh, and a refresh
// always replaces the cache with the server's records: the server view wins
// over any local state, pending or not.
//
// # Mutations
//
//	Operation     Optimistic write        On remote failure
//	CreateRecord  insert under tmp_ id    remove the temporary record (Discarded)
//	UpdateRecord  patch in place          refresh to server state (RolledBack)
//	RemoveRecord  remove                  restore per RollbackPolicy (RolledBack)
//
// Each call produces a Mutation that starts Pending and ends in exactly one
// terminal state. A write that landed is Confirmed by the first successful
// refresh started after it, whichever caller started that refresh.
//
// # Concurrency
//
// Remote calls run without the engine lock held, so a poll and several user
// mutations can be in flight together. Each cache write is atomic; sequences
// of writes are not. In particular a poll that completes between an
// optimistic write and its corrective refresh may show or overwrite the
// intermediate state, and RollbackSnapshot restores the cache as it was when
// the remove began, dropping anything that landed since.
//
// Remote calls are detached from caller cancellation. After Close, results of
// calls still in flight are discarded instead of written to the cache.
//
// # Errors
//
// ValidationError means nothing was written. RemoteWriteError means the
// optimistic write was applied and then corrected. RemoteReadError means a
// refresh failed and the cache kept its previous records. When a failed write
// is followed by a failed refresh both are returned, joined.
package reconcile
