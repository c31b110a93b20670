// Package cache holds the client's local view of the shared guest list.
//
// # Overview
//
// Store keeps an insertion-ordered set of guest records keyed by id, plus the
// health of the most recent refresh. It is the single source of truth the UI
// renders from; only the reconciliation engine writes to it.
//
// # Write Operations
//
//	ReplaceAll(records)  full replacement after a successful fetch
//	RecordFailure(err)   failed fetch: records kept, error recorded
//	Insert(record)       optimistic create
//	Patch(id, patch)     optimistic update
//	Remove(id)           optimistic delete
//	Restore(snapshot)    rollback to a captured snapshot
//	InsertAt(i, record)  rollback of a single removed record
//
// Every write is atomic with respect to readers: a Snapshot never observes a
// half-applied write. Sequences of writes are not atomic; callers that need
// that must arrange it themselves.
//
// # Snapshots
//
// Snapshot returns a deep copy. Mutating the returned records never affects
// the store, and a later Restore of that snapshot reinstates exactly the
// records it captured, in the same order. Version increases on every record
// write, so readers can memoize derived views on it.
//
// # Refresh Health
//
// The refresh bookkeeping mirrors a polling dashboard:
//
//   - LastUpdated: time of the last refresh attempt
//   - LastError: most recent refresh error (nil after a success)
//   - ConsecutiveFailures: failed refreshes since the last success
//
// IsOffline reports two or more consecutive failures.
//
// The zero Store is ready to use.
package cache
