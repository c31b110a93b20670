package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/potluck/internal/guest"
)

// Snapshot is an immutable view of the cache at a point in time.
type Snapshot struct {
	Records             []guest.Guest
	Version             uint64
	Loaded              bool // at least one refresh succeeded
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the store has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Find returns the record with id.
func (s Snapshot) Find(id guest.ID) (guest.Guest, bool) {
	for _, g := range s.Records {
		if g.ID == id {
			return g, true
		}
	}
	return guest.Guest{}, false
}

// Store coordinates concurrent access to the cached records.
type Store struct {
	mu      sync.RWMutex
	records []guest.Guest
	index   map[guest.ID]int
	names   map[string]int // NameKey -> number of records using it
	version uint64

	loaded              bool
	lastUpdated         time.Time
	lastError           error
	consecutiveFailures int
}

// ReplaceAll swaps in records as the complete set and clears refresh errors.
// Later duplicates of an id are dropped.
func (s *Store) ReplaceAll(records []guest.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setRecordsLocked(records)
	s.loaded = true
	s.lastError = nil
	s.lastUpdated = time.Now()
	s.consecutiveFailures = 0
}

// RecordFailure keeps the current records and notes the refresh error.
func (s *Store) RecordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastError = err
	s.lastUpdated = time.Now()
	s.consecutiveFailures++
}

// Insert appends record. It returns false, leaving the store unchanged, when
// the id is already present.
func (s *Store) Insert(record guest.Guest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[record.ID]; ok {
		return false
	}
	s.ensureIndexLocked()
	s.index[record.ID] = len(s.records)
	s.names[guest.NameKey(record.Name)]++
	s.records = append(s.records, record.Clone())
	s.version++
	return true
}

// InsertAt places record at position i (clamped to the valid range) unless
// the id is already present.
func (s *Store) InsertAt(i int, record guest.Guest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[record.ID]; ok {
		return false
	}
	i = max(0, min(i, len(s.records)))
	next := make([]guest.Guest, 0, len(s.records)+1)
	next = append(next, s.records[:i]...)
	next = append(next, record.Clone())
	next = append(next, s.records[i:]...)
	s.records = next
	s.reindexLocked()
	s.version++
	return true
}

// Patch applies p to the record with id and returns the updated record.
func (s *Store) Patch(id guest.ID, p guest.Patch) (guest.Guest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return guest.Guest{}, false
	}
	before := guest.NameKey(s.records[i].Name)
	s.records[i] = p.Apply(s.records[i])
	if after := guest.NameKey(s.records[i].Name); after != before {
		s.dropNameLocked(before)
		s.names[after]++
	}
	s.version++
	return s.records[i].Clone(), true
}

// Remove deletes the record with id, returning it and its former position.
func (s *Store) Remove(id guest.ID) (guest.Guest, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return guest.Guest{}, -1, false
	}
	removed := s.records[i]
	s.records = append(s.records[:i:i], s.records[i+1:]...)
	s.reindexLocked()
	s.version++
	return removed, i, true
}

// Restore replaces the records with those captured in snap. Refresh health is
// left as it is.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setRecordsLocked(snap.Records)
}

// NameTaken reports whether a record other than except uses name, compared
// trimmed and case-folded.
func (s *Store) NameTaken(name string, except guest.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := guest.NameKey(name)
	if key == "" {
		return false
	}
	n := s.names[key]
	if i, ok := s.index[except]; ok && guest.NameKey(s.records[i].Name) == key {
		n--
	}
	return n > 0
}

// Get returns a copy of the record with id.
func (s *Store) Get(id guest.ID) (guest.Guest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return guest.Guest{}, false
	}
	return s.records[i].Clone(), true
}

// Len returns the number of cached records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Records:             cloneRecords(s.records),
		Version:             s.version,
		Loaded:              s.loaded,
		LastUpdated:         s.lastUpdated,
		ConsecutiveFailures: s.consecutiveFailures,
	}
	if s.lastError != nil {
		snap.LastError = fmt.Errorf("%w", s.lastError)
	}
	return snap
}

func (s *Store) setRecordsLocked(records []guest.Guest) {
	next := make([]guest.Guest, 0, len(records))
	seen := make(map[guest.ID]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		next = append(next, r.Clone())
	}
	s.records = next
	s.reindexLocked()
	s.version++
}

func (s *Store) ensureIndexLocked() {
	if s.index == nil {
		s.index = make(map[guest.ID]int)
		s.names = make(map[string]int)
	}
}

func (s *Store) reindexLocked() {
	s.index = make(map[guest.ID]int, len(s.records))
	s.names = make(map[string]int, len(s.records))
	for i, r := range s.records {
		s.index[r.ID] = i
		s.names[guest.NameKey(r.Name)]++
	}
}

func (s *Store) dropNameLocked(key string) {
	if s.names[key] <= 1 {
		delete(s.names, key)
		return
	}
	s.names[key]--
}

func cloneRecords(records []guest.Guest) []guest.Guest {
	if len(records) == 0 {
		return nil
	}
	dup := make([]guest.Guest, len(records))
	for i, r := range records {
		dup[i] = r.Clone()
	}
	return dup
}
