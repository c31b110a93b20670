// Package remotetest provides an in-memory remote.Store whose calls can be
// held, released and failed on demand, for exercising race windows in tests.
package remotetest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/potluck/internal/guest"
	"github.com/five82/potluck/internal/remote"
)

// Op names a remote call.
type Op string

const (
	OpFetch  Op = "fetch"
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ErrNotFound is returned by Update and Delete for unknown ids.
var ErrNotFound = errors.New("record not found")

var _ remote.Store = (*Store)(nil)

// Gate blocks calls of one Op until released.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Entered receives once per call that reaches the gate.
func (g *Gate) Entered() <-chan struct{} { return g.entered }

// Release lets every held and future call through.
func (g *Gate) Release() { g.once.Do(func() { close(g.release) }) }

// Store is a fake shared collection.
type Store struct {
	mu       sync.Mutex
	records  []guest.Guest
	seq      int
	base     time.Time
	fail     map[Op]error
	failNext map[Op][]error
	gates    map[Op]*Gate
	calls    map[Op]int
}

// New returns a store seeded with records.
func New(records ...guest.Guest) *Store {
	s := &Store{
		base:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		fail:     make(map[Op]error),
		failNext: make(map[Op][]error),
		gates:    make(map[Op]*Gate),
		calls:    make(map[Op]int),
	}
	s.Set(records...)
	return s
}

// Set replaces the stored records.
func (s *Store) Set(records ...guest.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]guest.Guest, len(records))
	for i, r := range records {
		s.records[i] = r.Clone()
	}
}

// Records returns a copy of the stored records.
func (s *Store) Records() []guest.Guest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]guest.Guest, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Fail makes every call of op return err until cleared with a nil err.
func (s *Store) Fail(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

// FailNext queues err for the next call of op only.
func (s *Store) FailNext(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[op] = append(s.failNext[op], err)
}

// Hold installs a gate on op. Calls block before touching the records until
// the gate is released or their context ends.
func (s *Store) Hold(op Op) *Gate {
	g := &Gate{entered: make(chan struct{}, 64), release: make(chan struct{})}
	s.mu.Lock()
	s.gates[op] = g
	s.mu.Unlock()
	return g
}

// Calls reports how many times op was invoked.
func (s *Store) Calls(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// FetchAll implements remote.Store.
func (s *Store) FetchAll(ctx context.Context) ([]guest.Guest, error) {
	if err := s.enter(ctx, OpFetch); err != nil {
		return nil, err
	}
	return s.Records(), nil
}

// Insert implements remote.Store.
func (s *Store) Insert(ctx context.Context, draft guest.Draft) error {
	if err := s.enter(ctx, OpInsert); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := guest.ID(fmt.Sprintf("r%d", s.seq))
	s.records = append(s.records, draft.Guest(id, s.base.Add(time.Duration(s.seq)*time.Second)))
	return nil
}

// Update implements remote.Store.
func (s *Store) Update(ctx context.Context, id guest.ID, patch guest.Patch) error {
	if err := s.enter(ctx, OpUpdate); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	s.records[i] = patch.Apply(s.records[i])
	return nil
}

// Delete implements remote.Store.
func (s *Store) Delete(ctx context.Context, id guest.ID) error {
	if err := s.enter(ctx, OpDelete); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	s.records = slices.Delete(s.records, i, i+1)
	return nil
}

func (s *Store) enter(ctx context.Context, op Op) error {
	s.mu.Lock()
	s.calls[op]++
	gate := s.gates[op]
	s.mu.Unlock()

	if gate != nil {
		gate.entered <- struct{}{}
		select {
		case <-gate.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if queued := s.failNext[op]; len(queued) > 0 {
		s.failNext[op] = queued[1:]
		return queued[0]
	}
	return s.fail[op]
}

func (s *Store) indexLocked(id guest.ID) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
