package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/potluck/internal/guest"
)

// Kind is the type of an optimistic mutation.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindRemove Kind = "remove"
)

// State is where a mutation is in its lifecycle. Pending is the only
// non-terminal state; there is no retry state.
type State string

const (
	StatePending    State = "pending"
	StateConfirmed  State = "confirmed"
	StateDiscarded  State = "discarded"   // create whose insert failed
	StateRolledBack State = "rolled_back" // update or remove whose write failed
)

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s != StatePending
}

// Mutation records one optimistic write and its outcome.
type Mutation struct {
	Seq       uint64
	Kind      Kind
	RecordID  guest.ID
	State     State
	Err       error
	StartedAt time.Time
	EndedAt   time.Time

	// landedEpoch is the first fetch epoch that can observe the remote write;
	// zero while the write is in flight.
	landedEpoch uint64
}

func (m Mutation) landed() bool { return m.landedEpoch > 0 }

// RollbackPolicy selects how a failed remove is undone.
type RollbackPolicy int

const (
	// RollbackSnapshot restores the whole cache as captured when the remove
	// started. Writes that landed in between are lost until the next refresh.
	RollbackSnapshot RollbackPolicy = iota
	// RollbackRecord re-inserts only the removed record at its old position.
	RollbackRecord
)

func (p RollbackPolicy) String() string {
	switch p {
	case RollbackRecord:
		return "record"
	default:
		return "snapshot"
	}
}

// ParseRollbackPolicy parses "snapshot" or "record"; empty means snapshot.
func ParseRollbackPolicy(value string) (RollbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "snapshot":
		return RollbackSnapshot, nil
	case "record":
		return RollbackRecord, nil
	default:
		return RollbackSnapshot, fmt.Errorf("unknown rollback policy %q", value)
	}
}
